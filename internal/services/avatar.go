package services

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"image/color"
	"strings"
	"sync"
	"unicode"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	types "github.com/yungbote/tickethub-backend/internal/domain"
	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

const AvatarSize = 256

var avatarPalette = []string{
	"#2563EB", "#7C3AED", "#DB2777", "#DC2626",
	"#EA580C", "#CA8A04", "#16A34A", "#0D9488",
	"#0891B2", "#4F46E5", "#9333EA", "#475569",
}

type AvatarService interface {
	// Render draws the initials avatar of user as a PNG. The same user
	// always gets the same colour.
	Render(user *types.UserSummary) ([]byte, error)
}

type avatarService struct {
	log      *logger.Logger
	bgColors []color.NRGBA

	// truetype faces cache glyphs and are not safe for concurrent use.
	mu       sync.Mutex
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	bgColors := make([]color.NRGBA, 0, len(avatarPalette))
	for _, h := range avatarPalette {
		r, g, b, err := parseHexRGB(h)
		if err != nil {
			return nil, fmt.Errorf("avatar palette %q: %w", h, err)
		}
		bgColors = append(bgColors, color.NRGBA{R: r, G: g, B: b, A: 255})
	}

	face, err := loadFontFace(gobold.TTF, AvatarSize*0.4)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		bgColors: bgColors,
		fontFace: face,
	}, nil
}

func (as *avatarService) Render(user *types.UserSummary) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("user required")
	}
	const size = AvatarSize

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(as.pickColor(user.ID.String()))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	as.mu.Lock()
	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(user.Name, user.Email), float64(size)/2, float64(size)/2, 0.5, 0.35)
	as.mu.Unlock()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (as *avatarService) pickColor(key string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return as.bgColors[int(h.Sum32()%uint32(len(as.bgColors)))]
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return raw[0], raw[1], raw[2], nil
}

// computeInitials takes the first letter of the first and last words of
// name, falling back to the first letter of email.
func computeInitials(name, email string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '.'
	})
	first := func(s string) string {
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return strings.ToUpper(string(r))
			}
		}
		return ""
	}
	switch len(words) {
	case 0:
	case 1:
		if i := first(words[0]); i != "" {
			return i
		}
	default:
		if i := first(words[0]) + first(words[len(words)-1]); i != "" {
			return i
		}
	}
	if i := first(email); i != "" {
		return i
	}
	return "?"
}

func loadFontFace(fontBytes []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}

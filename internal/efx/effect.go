package efx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rpggio/efxcreator/internal/domain/timeline"
)

// EffectType selects the lighting behaviour of an entry.
type EffectType uint8

const (
	EffectOn     EffectType = 1
	EffectOff    EffectType = 2
	EffectStrobe EffectType = 3
	EffectBlink  EffectType = 4
	EffectBreath EffectType = 5
)

var effectNames = map[EffectType]string{
	EffectOn:     "on",
	EffectOff:    "off",
	EffectStrobe: "strobe",
	EffectBlink:  "blink",
	EffectBreath: "breath",
}

func (t EffectType) String() string {
	if name, ok := effectNames[t]; ok {
		return name
	}
	return fmt.Sprintf("effect(%d)", uint8(t))
}

// ParseEffectType resolves a case-insensitive effect name.
func ParseEffectType(name string) (EffectType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range effectNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown effect type %q", name)
}

// DefaultPeriod is the period the editor proposes for a new entry of type t.
func (t EffectType) DefaultPeriod() uint8 {
	switch t {
	case EffectStrobe:
		return 2
	case EffectBlink:
		return 5
	case EffectBreath:
		return 10
	default:
		return 0
	}
}

// UsesBackground reports whether the effect alternates with a background color.
func (t EffectType) UsesBackground() bool {
	return t == EffectStrobe || t == EffectBlink || t == EffectBreath
}

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Hex renders the color as rrggbb.
func (c Color) Hex() string {
	return hex.EncodeToString([]byte{c.R, c.G, c.B})
}

// ParseColor reads rrggbb, with or without a leading '#'.
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	raw, err := hex.DecodeString(value)
	if err != nil || len(raw) != 3 {
		return Color{}, fmt.Errorf("invalid color %q: want rrggbb", value)
	}
	return Color{R: raw[0], G: raw[1], B: raw[2]}, nil
}

// Effect is the decoded form of an entry payload.
type Effect struct {
	Type         EffectType
	Color        Color
	Background   Color
	Period       uint8
	SPF          uint8
	Fade         uint8
	RandomColor  uint8
	RandomDelay  uint8
	Broadcasting uint8
	SyncIndex    uint8
}

const effectPayloadSize = 14

// DefaultEffect returns the editor defaults for a new entry of type t.
func DefaultEffect(t EffectType) Effect {
	e := Effect{
		Type:         t,
		Color:        Color{R: 255, G: 255, B: 255},
		Period:       t.DefaultPeriod(),
		SPF:          100,
		Fade:         100,
		Broadcasting: 1,
	}
	if t == EffectOff {
		e.Color = Color{}
		e.SPF = 0
		e.Fade = 0
	}
	return e
}

// EncodeEffect packs e into an entry payload.
func EncodeEffect(e Effect) timeline.Payload {
	return timeline.Payload{
		byte(e.Type),
		e.Color.R, e.Color.G, e.Color.B,
		e.Background.R, e.Background.G, e.Background.B,
		e.Period,
		e.SPF,
		e.Fade,
		e.RandomColor,
		e.RandomDelay,
		e.Broadcasting,
		e.SyncIndex,
	}
}

// DecodeEffect unpacks an entry payload.
func DecodeEffect(p timeline.Payload) (Effect, error) {
	if len(p) != effectPayloadSize {
		return Effect{}, fmt.Errorf("%w: effect payload is %d bytes, want %d", ErrMalformed, len(p), effectPayloadSize)
	}
	e := Effect{
		Type:         EffectType(p[0]),
		Color:        Color{R: p[1], G: p[2], B: p[3]},
		Background:   Color{R: p[4], G: p[5], B: p[6]},
		Period:       p[7],
		SPF:          p[8],
		Fade:         p[9],
		RandomColor:  p[10],
		RandomDelay:  p[11],
		Broadcasting: p[12],
		SyncIndex:    p[13],
	}
	if _, ok := effectNames[e.Type]; !ok {
		return Effect{}, fmt.Errorf("%w: unknown effect type %d", ErrMalformed, p[0])
	}
	return e, nil
}

// Describe renders a payload for listings; unknown payloads are shown as hex.
func Describe(p timeline.Payload) string {
	e, err := DecodeEffect(p)
	if err != nil {
		return "raw:" + hex.EncodeToString(p)
	}
	if e.Type == EffectOff {
		return e.Type.String()
	}
	desc := fmt.Sprintf("%s #%s", e.Type, e.Color.Hex())
	if e.Type.UsesBackground() {
		desc += fmt.Sprintf("/#%s period=%d", e.Background.Hex(), e.Period)
	}
	return desc
}

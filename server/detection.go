package server

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/netmove/omath"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
)

// Detection counts violations of one kind for a single entity. A failure only counts as a
// violation once the buffer of recent failures reaches FailBuffer.
type Detection struct {
	Type    string
	SubType string

	Violations    float32
	MaxViolations float32

	Buffer     float32
	FailBuffer float32
	MaxBuffer  float32

	Punishable bool
}

// NewDetection returns a detection configured with the basics passed.
func NewDetection(typ, subType string, basics settings.Basics) *Detection {
	return &Detection{
		Type:          typ,
		SubType:       subType,
		MaxViolations: float32(basics.MaxViolations),
		FailBuffer:    float32(basics.FailBuffer),
		MaxBuffer:     float32(basics.MaxBuffer),
		Punishable:    basics.Enabled,
	}
}

// Fail is called when the detection is triggered from abnormal behaviour. It returns true if the
// entity reached the maximum amount of violations and should be removed.
func (d *Detection) Fail(log *logrus.Entry, extraData *orderedmap.OrderedMap[string, any]) bool {
	if extraData == nil {
		extraData = orderedmap.NewOrderedMap[string, any]()
	}

	d.Buffer = math32.Min(d.Buffer+1, d.MaxBuffer)
	if d.Buffer < d.FailBuffer {
		return false
	}

	d.Violations++
	log.Warnf("flagged %s (%s) <x%v> %s", d.Type, d.SubType, omath.Round32(d.Violations, 2), OrderedMapToString(extraData))
	return d.Punishable && d.Violations >= d.MaxViolations
}

// Debuff lowers the buffer of the detection after legitimate behaviour.
func (d *Detection) Debuff(amount float32) {
	d.Buffer = math32.Max(d.Buffer-amount, 0)
}

// OrderedMapToString converts an orderedmap to a string.
func OrderedMapToString(data *orderedmap.OrderedMap[string, any]) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for el := data.Front(); el != nil; el = el.Next() {
		if sb.Len() > 1 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", el.Key, el.Value)
	}
	sb.WriteByte(']')
	return sb.String()
}

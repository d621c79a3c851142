package server

import (
	"testing"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/netmove/settings"
	"github.com/sirupsen/logrus"
)

func TestDetectionBuffer(t *testing.T) {
	d := NewDetection("Movement", "A", settings.Basics{Enabled: true, FailBuffer: 2, MaxBuffer: 3, MaxViolations: 2})
	log := logrus.NewEntry(logrus.New())

	if d.Fail(log, nil) || d.Violations != 0 {
		t.Fatalf("expected first failure to only fill the buffer, got %v violations", d.Violations)
	}
	if d.Fail(log, nil) || d.Violations != 1 {
		t.Fatalf("expected second failure to count, got %v violations", d.Violations)
	}
	d.Debuff(3)
	if d.Buffer != 0 {
		t.Fatalf("expected debuff to empty the buffer, got %v", d.Buffer)
	}
	d.Fail(log, nil)
	if !d.Fail(log, nil) {
		t.Fatalf("expected reaching the maximum violations to punish")
	}
}

func TestDetectionNotPunishableWhenDisabled(t *testing.T) {
	d := NewDetection("Movement", "A", settings.Basics{FailBuffer: 1, MaxBuffer: 1, MaxViolations: 1})
	if d.Fail(logrus.NewEntry(logrus.New()), nil) {
		t.Fatalf("expected disabled detection never to punish")
	}
}

func TestOrderedMapToString(t *testing.T) {
	m := orderedmap.NewOrderedMap[string, any]()
	m.Set("seq", 4)
	m.Set("reason", "too fast")
	if got := OrderedMapToString(m); got != "[seq=4 reason=too fast]" {
		t.Fatalf("unexpected string %q", got)
	}
	if got := OrderedMapToString(orderedmap.NewOrderedMap[string, any]()); got != "[]" {
		t.Fatalf("unexpected string %q for empty map", got)
	}
}

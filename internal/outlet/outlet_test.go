package outlet

import (
	"errors"
	"strings"
	"testing"
)

func testMap(t *testing.T) *Map {
	t.Helper()
	m, err := NewMap([]Outlet{
		{Name: "halogen", Index: 1},
		{Name: "neon", Index: 2},
		{Name: "argon", Index: 3},
	})
	if err != nil {
		t.Fatalf("NewMap() error = %v", err)
	}
	return m
}

func TestNewMap_RejectsDuplicates(t *testing.T) {
	tests := []struct {
		name    string
		outlets []Outlet
	}{
		{
			name: "duplicate name",
			outlets: []Outlet{
				{Name: "halogen", Index: 1},
				{Name: "halogen", Index: 2},
			},
		},
		{
			name: "duplicate index",
			outlets: []Outlet{
				{Name: "halogen", Index: 1},
				{Name: "neon", Index: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMap(tt.outlets); err == nil {
				t.Error("NewMap() = nil error, want duplicate error")
			}
		})
	}
}

func TestMap_Lookup(t *testing.T) {
	m := testMap(t)

	idx, err := m.Lookup("neon")
	if err != nil {
		t.Fatalf("Lookup(neon) error = %v", err)
	}
	if idx != 2 {
		t.Errorf("Lookup(neon) = %d, want 2", idx)
	}

	_, err = m.Lookup("hgcd")
	if !errors.Is(err, ErrUnknownLamp) {
		t.Errorf("Lookup(hgcd) error = %v, want ErrUnknownLamp", err)
	}
	if err == nil || !strings.Contains(err.Error(), "hgcd") {
		t.Errorf("Lookup(hgcd) error %v should name the lamp", err)
	}
}

func TestMap_Describe(t *testing.T) {
	m := testMap(t)

	want := "outlet01=halogen,outlet02=neon,outlet03=argon"
	if got := m.Describe(); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}

	// Idempotent: repeated calls return the same string.
	if got := m.Describe(); got != want {
		t.Errorf("Describe() second call = %q, want %q", got, want)
	}
}

func TestSimDriver_SetGet(t *testing.T) {
	d := NewSimDriver()

	applied, err := d.Set(1, true)
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !applied {
		t.Error("Set(1, true) read-back = false, want true")
	}

	on, err := d.Get(1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !on {
		t.Error("Get(1) = false, want true")
	}

	// Unwired positions read as off.
	on, err = d.Get(42)
	if err != nil {
		t.Fatalf("Get(42) error = %v", err)
	}
	if on {
		t.Error("Get(42) = true, want false")
	}
}

func TestSnapshot(t *testing.T) {
	m := testMap(t)
	d := NewSimDriver()

	if _, err := d.Set(2, true); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := Snapshot(m, d)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	want := "halogen=off,neon=on,argon=off"
	if got != want {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}
}

func TestAllOff(t *testing.T) {
	m := testMap(t)
	d := NewSimDriver()

	for _, o := range m.Outlets() {
		if _, err := d.Set(o.Index, true); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := AllOff(m, d); err != nil {
		t.Fatalf("AllOff() error = %v", err)
	}

	got, err := Snapshot(m, d)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if got != "halogen=off,neon=off,argon=off" {
		t.Errorf("Snapshot() after AllOff = %q, want all off", got)
	}
}

func TestStateString(t *testing.T) {
	if StateString(true) != "on" || StateString(false) != "off" {
		t.Error("StateString mapping wrong")
	}
}

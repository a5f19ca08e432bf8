package models

import "testing"

func TestNewESIMProfile(t *testing.T) {
	p := NewESIMProfile("89014103211118510720", "MPT", "D1")

	if p.ICCID != "89014103211118510720" {
		t.Errorf("expected ICCID to be set, got %s", p.ICCID)
	}
	if p.CarrierCode != "MPT" {
		t.Errorf("expected CarrierCode MPT, got %s", p.CarrierCode)
	}
	if p.Status != ProfileStatusCreated {
		t.Errorf("expected Status %s, got %s", ProfileStatusCreated, p.Status)
	}
	if p.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if p.Version != 1 {
		t.Errorf("expected Version 1, got %d", p.Version)
	}
}

func TestProfileStatusTransitions(t *testing.T) {
	tests := []struct {
		from    ProfileStatus
		to      ProfileStatus
		allowed bool
	}{
		{ProfileStatusCreated, ProfileStatusDownloaded, true},
		{ProfileStatusCreated, ProfileStatusEnabled, false},
		{ProfileStatusDownloaded, ProfileStatusInstalled, true},
		{ProfileStatusDownloaded, ProfileStatusEnabled, true},
		{ProfileStatusInstalled, ProfileStatusEnabled, true},
		{ProfileStatusEnabled, ProfileStatusDisabled, true},
		{ProfileStatusDisabled, ProfileStatusEnabled, true},
		{ProfileStatusEnabled, ProfileStatusDownloaded, false},
		{ProfileStatusDisabled, ProfileStatusDownloaded, false},
		{ProfileStatusEnabled, ProfileStatusDeleted, true},
		{ProfileStatusDisabled, ProfileStatusDeleted, true},
		{ProfileStatusDeleted, ProfileStatusEnabled, false},
		{ProfileStatusDeleted, ProfileStatusDownloaded, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestProfileStatusIsTerminal(t *testing.T) {
	if !ProfileStatusDeleted.IsTerminal() {
		t.Error("expected deleted to be terminal")
	}
	for _, s := range []ProfileStatus{ProfileStatusCreated, ProfileStatusDownloaded, ProfileStatusInstalled, ProfileStatusEnabled, ProfileStatusDisabled} {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestValidICCID(t *testing.T) {
	tests := []struct {
		iccid string
		valid bool
	}{
		{"89014103211118510720", true},  // 20 digits
		{"8901410321111851072", true},   // 19 digits
		{"890141032111185107", false},    // 18 digits
		{"890141032111185107201", false}, // 21 digits
		{"89014103211118510a20", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidICCID(tt.iccid); got != tt.valid {
			t.Errorf("ValidICCID(%q): expected %v, got %v", tt.iccid, tt.valid, got)
		}
	}
}

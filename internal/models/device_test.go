package models

import "testing"

func TestDeriveDeviceCapability(t *testing.T) {
	tests := []struct {
		name       string
		deviceType string
		platform   string
		model      string
		want       DeviceCapability
	}{
		{"iphone", "smartphone", "ios", "iPhone 15 Pro", CapabilityDualESIM},
		{"ios non-iphone", "smartphone", "ios", "iPad Mini", CapabilitySingleESIM},
		{"android", "smartphone", "android", "Pixel 9", CapabilitySingleESIM},
		{"tablet", "tablet", "android", "Galaxy Tab", CapabilitySingleESIM},
		{"smartwatch", "smartwatch", "watchos", "Watch Ultra", CapabilitySingleESIM},
		{"unmatched", "router", "linux", "", CapabilitySingleESIM},
		{"case insensitive", "Smartphone", "Android", "Pixel 9", CapabilitySingleESIM},
		{"empty", "", "", "", CapabilitySingleESIM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDeviceCapability(tt.deviceType, tt.platform, tt.model); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewDevice(t *testing.T) {
	d := NewDevice("D1", "smartphone", "ios", "iPhone 15", "U1")

	if d.DeviceID != "D1" {
		t.Errorf("expected DeviceID D1, got %s", d.DeviceID)
	}
	if d.Capability != CapabilityDualESIM {
		t.Errorf("expected capability %s, got %s", CapabilityDualESIM, d.Capability)
	}
	if d.UserID != "U1" {
		t.Errorf("expected UserID U1, got %s", d.UserID)
	}
	if d.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}
}

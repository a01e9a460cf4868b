package models

import (
	"testing"
	"time"
)

func TestTopicValidateColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"", true},
		{"#FF0000", true},
		{"#a1b2c3", true},
		{"#FFF", false},
		{"FF0000", false},
		{"#GGGGGG", false},
	}

	for _, tt := range tests {
		topic := Topic{Name: "Budget", Color: tt.color}
		errs := topic.Validate()
		if tt.valid && len(errs) != 0 {
			t.Errorf("Expected color %q to be valid, got %v", tt.color, errs)
		}
		if !tt.valid && len(errs) == 0 {
			t.Errorf("Expected color %q to be rejected", tt.color)
		}
	}
}

func TestThreadValidate(t *testing.T) {
	thread := Thread{}
	errs := thread.Validate()
	if len(errs) != 2 {
		t.Errorf("Expected 2 violations (name, topic), got %v", errs)
	}

	future := time.Now().AddDate(0, 0, 1)
	thread = Thread{TopicID: 1, Name: "Strike coverage", StartDate: &future}
	errs = thread.Validate()
	if len(errs) != 1 {
		t.Errorf("Expected a future start date violation, got %v", errs)
	}
}

func TestUserFullName(t *testing.T) {
	user := User{Username: "jdoe", FirstName: "Jordan", LastName: "Doe"}
	if got := user.FullName(); got != "Jordan Doe" {
		t.Errorf("Expected Jordan Doe, got %q", got)
	}

	user = User{Username: "jdoe", FirstName: "Jordan"}
	if got := user.FullName(); got != "jdoe" {
		t.Errorf("Expected fallback to username, got %q", got)
	}
}

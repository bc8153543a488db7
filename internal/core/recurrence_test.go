package core

import (
	"errors"
	"testing"
	"time"
)

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr bool
	}{
		{"valid weekly", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "10:00"}, false},
		{"valid biweekly", Rule{Frequency: FrequencyBiweekly, DayOfWeek: 0, TimeOfDay: "00:00"}, false},
		{"valid monthly", Rule{Frequency: FrequencyMonthly, DayOfWeek: 6, TimeOfDay: "23:59"}, false},
		{"unknown frequency", Rule{Frequency: "DAILY", DayOfWeek: 1, TimeOfDay: "10:00"}, true},
		{"day of week too high", Rule{Frequency: FrequencyWeekly, DayOfWeek: 7, TimeOfDay: "10:00"}, true},
		{"day of week negative", Rule{Frequency: FrequencyWeekly, DayOfWeek: -1, TimeOfDay: "10:00"}, true},
		{"bad clock format", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "ten am"}, true},
		{"hour out of range", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "24:00"}, true},
		{"minute out of range", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "10:60"}, true},
		{"12-hour suffix", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "10:00pm"}, true},
		{"seconds not allowed", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "10:00:30"}, true},
		{"trailing text", Rule{Frequency: FrequencyWeekly, DayOfWeek: 1, TimeOfDay: "10:00 extra"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr && err == nil {
				t.Errorf("Validate() = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr && err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	// Wednesday, March 12 2025, 09:00 UTC
	wednesday := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		rule Rule
		want time.Time
	}{
		{
			// Creating a biweekly Monday 10:00 schedule on a Wednesday
			// places the first meeting the coming Monday, not two weeks out.
			name: "biweekly monday from wednesday",
			now:  wednesday,
			rule: Rule{Frequency: FrequencyBiweekly, DayOfWeek: 1, TimeOfDay: "10:00"},
			want: time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "same day later time",
			now:  wednesday,
			rule: Rule{Frequency: FrequencyWeekly, DayOfWeek: 3, TimeOfDay: "15:30"},
			want: time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC),
		},
		{
			name: "same day earlier time rolls a week",
			now:  wednesday,
			rule: Rule{Frequency: FrequencyWeekly, DayOfWeek: 3, TimeOfDay: "08:00"},
			want: time.Date(2025, 3, 19, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "same day past cutoff rolls a week",
			now:  time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC),
			rule: Rule{Frequency: FrequencyWeekly, DayOfWeek: 3, TimeOfDay: "23:00"},
			want: time.Date(2025, 3, 19, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "weekday behind wraps to next week",
			now:  wednesday,
			rule: Rule{Frequency: FrequencyWeekly, DayOfWeek: 0, TimeOfDay: "10:00"},
			want: time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC), // Monday
			rule: Rule{Frequency: FrequencyWeekly, DayOfWeek: 2, TimeOfDay: "10:00"},
			want: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.now, tt.rule)
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("NextOccurrence() = %v, not after now %v", got, tt.now)
			}
		})
	}
}

func TestAdvance(t *testing.T) {
	base := time.Date(2025, 3, 17, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency string
		wantDays  int
	}{
		{FrequencyWeekly, 7},
		{FrequencyBiweekly, 14},
		{FrequencyMonthly, 30},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got := Advance(base, tt.frequency)
			want := base.AddDate(0, 0, tt.wantDays)
			if !got.Equal(want) {
				t.Errorf("Advance(%s) = %v, want %v", tt.frequency, got, want)
			}
		})
	}
}

package models

import (
	"database/sql/driver"
	"reflect"
	"testing"
)

func TestTraitScoreMap_Value(t *testing.T) {
	tests := []struct {
		name    string
		m       TraitScoreMap
		wantVal driver.Value
		wantErr bool
	}{
		{
			name:    "nil map",
			m:       nil,
			wantVal: "{}",
			wantErr: false,
		},
		{
			name:    "empty map",
			m:       TraitScoreMap{},
			wantVal: "{}",
			wantErr: false,
		},
		{
			name:    "single entry",
			m:       TraitScoreMap{"curiosity": 80},
			wantVal: `{"curiosity":80}`,
			wantErr: false,
		},
		{
			name:    "fractional score",
			m:       TraitScoreMap{"patience": 66.67},
			wantVal: `{"patience":66.67}`,
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotVal, err := tt.m.Value()
			if (err != nil) != tt.wantErr {
				t.Errorf("TraitScoreMap.Value() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(gotVal, tt.wantVal) {
				t.Errorf("TraitScoreMap.Value() gotVal = %v, want %v", gotVal, tt.wantVal)
			}
		})
	}
}

func TestTraitScoreMap_Scan(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantM   TraitScoreMap
		wantErr bool
	}{
		{
			name:    "nil input",
			value:   nil,
			wantM:   TraitScoreMap{},
			wantErr: false,
		},
		{
			name:    "empty string input",
			value:   "",
			wantM:   TraitScoreMap{},
			wantErr: false,
		},
		{
			name:    "empty byte slice input",
			value:   []byte(""),
			wantM:   TraitScoreMap{},
			wantErr: false,
		},
		{
			name:    "json null",
			value:   "null",
			wantM:   TraitScoreMap{},
			wantErr: false,
		},
		{
			name:    "empty object",
			value:   "{}",
			wantM:   TraitScoreMap{},
			wantErr: false,
		},
		{
			name:    "string input",
			value:   `{"curiosity":80,"patience":60.5}`,
			wantM:   TraitScoreMap{"curiosity": 80, "patience": 60.5},
			wantErr: false,
		},
		{
			name:    "byte slice input",
			value:   []byte(`{"focus":42}`),
			wantM:   TraitScoreMap{"focus": 42},
			wantErr: false,
		},
		{
			name:    "malformed json",
			value:   `{"focus":`,
			wantErr: true,
		},
		{
			name:    "unsupported type int",
			value:   int(123),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m TraitScoreMap
			err := m.Scan(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("TraitScoreMap.Scan() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(m, tt.wantM) {
				t.Errorf("TraitScoreMap.Scan() gotM = %v, want %v", m, tt.wantM)
			}
		})
	}
}

func TestTraitScoreMap_RoundTrip(t *testing.T) {
	original := TraitScoreMap{"honesty": 91, "impatience": 33.33}

	val, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error: %v", err)
	}

	var scanned TraitScoreMap
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if !reflect.DeepEqual(scanned, original) {
		t.Errorf("round trip = %v, want %v", scanned, original)
	}
}

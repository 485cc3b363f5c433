package model

import (
	"encoding/json"
	"time"
)

// APITime is a helper for consistent JSON encoding of timestamps. Zero
// times marshal as null.
type APITime time.Time

// NewTime creates an APITime from a time.Time.
func NewTime(t time.Time) APITime { return APITime(t) }

func (at APITime) MarshalJSON() ([]byte, error) {
	t := time.Time(at)
	if t.IsZero() {
		return json.Marshal(nil)
	}

	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (at *APITime) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == nil {
		*at = APITime(time.Time{})
		return nil
	}

	t, err := time.ParseInLocation(time.RFC3339Nano, *s, time.UTC)
	if err != nil {
		return err
	}
	*at = APITime(t)

	return nil
}

func (at APITime) String() string { return time.Time(at).UTC().Format(time.RFC3339Nano) }

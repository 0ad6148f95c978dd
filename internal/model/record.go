package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// RawTimestamp is a timestamp as supplied by the mailbox page. It is either
// text (where the empty string means "unset"), a structured instant, or
// absent.
type RawTimestamp struct {
	Text       string
	Instant    time.Time
	Structured bool
}

// TextTimestamp returns a RawTimestamp holding the given text.
func TextTimestamp(s string) RawTimestamp {
	return RawTimestamp{Text: s}
}

// InstantTimestamp returns a RawTimestamp holding an already-parsed instant.
func InstantTimestamp(t time.Time) RawTimestamp {
	return RawTimestamp{Instant: t, Structured: true}
}

// IsUnset reports whether the timestamp carries no value.
func (r RawTimestamp) IsUnset() bool {
	return !r.Structured && r.Text == ""
}

// UnmarshalJSON accepts a string, an epoch-milliseconds number, or null.
func (r *RawTimestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = RawTimestamp{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = TextTimestamp(s)
		return nil
	default:
		var ms json.Number
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("timestamp must be a string or a number, got %s", data)
		}
		v, err := ms.Int64()
		if err != nil {
			f, ferr := ms.Float64()
			if ferr != nil {
				return fmt.Errorf("invalid epoch timestamp %s: %w", ms, err)
			}
			v = int64(f)
		}
		*r = InstantTimestamp(time.UnixMilli(v).UTC())
		return nil
	}
}

// MarshalJSON writes the timestamp back in the shape it was read.
func (r RawTimestamp) MarshalJSON() ([]byte, error) {
	if r.Structured {
		return json.Marshal(r.Instant.UnixMilli())
	}
	return json.Marshal(r.Text)
}

// RawTicketRecord is one conversation as read from the mailbox page. Every
// field is untrusted.
type RawTicketRecord struct {
	ID           int64
	CustomerName string
	Subject      string
	Number       int64
	Status       Status
	Tags         []string
	WaitingSince RawTimestamp
	ModifiedAt   RawTimestamp
}

// wireRecord mirrors the page's conversation model.
type wireRecord struct {
	ID       json.Number `json:"id"`
	Customer *struct {
		FullName string `json:"fullName"`
	} `json:"customer"`
	CustomerName string            `json:"customerName"`
	Subject      string            `json:"subject"`
	Number       json.Number       `json:"number"`
	Status       json.Number       `json:"status"`
	Tags         []json.RawMessage `json:"tags"`
	WaitingSince RawTimestamp      `json:"waitingSince"`
	ModifiedAt   RawTimestamp      `json:"modifiedAt"`
}

// UnmarshalJSON decodes a conversation model, normalizing tags and the
// customer name.
func (r *RawTicketRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	if w.ID == "" {
		return fmt.Errorf("record has no id")
	}
	id, err := w.ID.Int64()
	if err != nil {
		return fmt.Errorf("invalid id %q: %w", w.ID, err)
	}
	number, err := optionalInt(w.Number)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", w.Number, err)
	}
	status, err := optionalInt(w.Status)
	if err != nil {
		return fmt.Errorf("invalid status %q: %w", w.Status, err)
	}

	customer := w.CustomerName
	if w.Customer != nil && w.Customer.FullName != "" {
		customer = w.Customer.FullName
	}

	*r = RawTicketRecord{
		ID:           id,
		CustomerName: customer,
		Subject:      w.Subject,
		Number:       number,
		Status:       Status(status),
		Tags:         tagNames(w.Tags),
		WaitingSince: w.WaitingSince,
		ModifiedAt:   w.ModifiedAt,
	}
	return nil
}

func optionalInt(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	return n.Int64()
}

// tagNames accepts tags as plain strings or as objects carrying a name.
// Anything else is skipped. The result is never nil.
func tagNames(raw []json.RawMessage) []string {
	names := make([]string, 0, len(raw))
	for _, t := range raw {
		var name string
		if err := json.Unmarshal(t, &name); err == nil {
			if name != "" {
				names = append(names, name)
			}
			continue
		}
		var obj struct {
			Name string `json:"name"`
			Tag  string `json:"tag"`
		}
		if err := json.Unmarshal(t, &obj); err != nil {
			continue
		}
		switch {
		case obj.Name != "":
			names = append(names, obj.Name)
		case obj.Tag != "":
			names = append(names, obj.Tag)
		}
	}
	return names
}

// DecodeError reports a single record that could not be decoded.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("record %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeRecords decodes a batch of conversation models given either as a
// JSON array or as a JSON object keyed by id. Records that fail to decode
// are reported in recordErrs and skipped; err is set only when the batch
// itself is not valid JSON of either shape.
func DecodeRecords(data []byte) (records []RawTicketRecord, recordErrs []error, err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []RawTicketRecord{}, nil, nil
	}

	type keyed struct {
		key string
		raw json.RawMessage
	}
	var entries []keyed

	switch data[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, nil, fmt.Errorf("failed to decode record list: %w", err)
		}
		for i, raw := range list {
			entries = append(entries, keyed{key: fmt.Sprintf("#%d", i), raw: raw})
		}
	case '{':
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(data, &byKey); err != nil {
			return nil, nil, fmt.Errorf("failed to decode record map: %w", err)
		}
		for k, raw := range byKey {
			entries = append(entries, keyed{key: k, raw: raw})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].key < entries[j].key
		})
	default:
		return nil, nil, fmt.Errorf("records must be a JSON array or object")
	}

	records = make([]RawTicketRecord, 0, len(entries))
	for _, e := range entries {
		var rec RawTicketRecord
		if err := json.Unmarshal(e.raw, &rec); err != nil {
			recordErrs = append(recordErrs, &DecodeError{Key: e.key, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, recordErrs, nil
}

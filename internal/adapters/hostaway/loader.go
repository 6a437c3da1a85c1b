// Package hostaway reads Hostaway review exports used to seed the store.
package hostaway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"guestreviews/internal/domain"
)

type envelope struct {
	Status string                  `json:"status"`
	Result []domain.HostawayRecord `json:"result"`
}

// Decode accepts either the API envelope {"status":..,"result":[..]} or a
// bare array of records.
func Decode(r io.Reader) ([]domain.HostawayRecord, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, fmt.Errorf("hostaway: empty payload")
	}

	if b[0] == '[' {
		var recs []domain.HostawayRecord
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("hostaway: decode records: %w", err)
		}
		return recs, nil
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("hostaway: decode envelope: %w", err)
	}
	if env.Status != "" && env.Status != "success" {
		return nil, fmt.Errorf("hostaway: payload status %q", env.Status)
	}
	return env.Result, nil
}

func LoadFile(path string) ([]domain.HostawayRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

package solar

import (
	"bytes"
	"encoding/json"

	"github.com/bft-labs/sunshade/internal/domain"
)

// vendorStatusOK is the status value sent alongside successful results.
const vendorStatusOK = "OK"

// Payload holds the raw solar fields from one response.
type Payload struct {
	Sunrise string
	Sunset  string

	// Optional fields, empty when the vendor omits them.
	Date     string
	Timezone string
	Status   string
}

type response struct {
	Results map[string]json.RawMessage `json:"results"`
	Status  *string                    `json:"status"`
}

// Parse extracts sunrise and sunset from the response text.
func Parse(text string) (Payload, error) {
	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return Payload{}, &domain.ParseError{Kind: domain.InvalidPayload, Err: err}
	}

	var p Payload
	if resp.Status != nil {
		p.Status = *resp.Status
		if p.Status != vendorStatusOK {
			return Payload{}, &domain.ParseError{Kind: domain.VendorStatus, Field: "status", Raw: p.Status}
		}
	}
	if resp.Results == nil {
		return Payload{}, &domain.ParseError{Kind: domain.MissingField, Field: "results"}
	}

	var err error
	if p.Sunrise, err = requiredString(resp.Results, "sunrise"); err != nil {
		return Payload{}, err
	}
	if p.Sunset, err = requiredString(resp.Results, "sunset"); err != nil {
		return Payload{}, err
	}
	p.Date = optionalString(resp.Results, "date")
	p.Timezone = optionalString(resp.Results, "timezone")
	return p, nil
}

func requiredString(results map[string]json.RawMessage, field string) (string, error) {
	raw, ok := results[field]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return "", &domain.ParseError{Kind: domain.MissingField, Field: field}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &domain.ParseError{Kind: domain.MissingField, Field: field, Raw: string(raw), Err: err}
	}
	return s, nil
}

func optionalString(results map[string]json.RawMessage, field string) string {
	var s string
	if raw, ok := results[field]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

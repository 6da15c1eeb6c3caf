package aggregator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// RawTransaction is one lending-protocol event as exported by the indexer.
type RawTransaction struct {
	UserWallet *string     `json:"userWallet"`
	Action     *string     `json:"action"`
	ActionData *ActionData `json:"actionData"`
	Timestamp  Scalar      `json:"timestamp"`

	// actionData was present and null, as opposed to absent
	nullData bool
}

// UnmarshalJSON implements json.Unmarshaler. An absent actionData key and an
// explicit null both leave ActionData nil; only the latter marks the record
// as unusable.
func (t *RawTransaction) UnmarshalJSON(data []byte) error {
	type fields RawTransaction
	var aux struct {
		fields
		ActionData json.RawMessage `json:"actionData"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*t = RawTransaction(aux.fields)
	raw := bytes.TrimSpace(aux.ActionData)
	switch {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		t.nullData = true
	default:
		var ad ActionData
		if err := json.Unmarshal(raw, &ad); err != nil {
			return fmt.Errorf("decode actionData: %w", err)
		}
		t.ActionData = &ad
	}
	return nil
}

// NullActionData reports whether the record carried "actionData": null.
func (t RawTransaction) NullActionData() bool {
	return t.nullData
}

// ActionData carries the asset-level payload of a transaction.
type ActionData struct {
	AssetSymbol   *string `json:"assetSymbol"`
	Amount        Scalar  `json:"amount"`
	AssetPriceUSD Scalar  `json:"assetPriceUSD"`
}

var (
	errMissing    = errors.New("value missing")
	errNull       = errors.New("value is null")
	errNotNumeric = errors.New("value is not numeric")
)

// Scalar keeps a JSON value in raw form until the field that owns it is coerced.
// A zero Scalar means the key was absent from the document.
type Scalar struct {
	raw json.RawMessage
}

// ScalarOf builds a Scalar from any JSON-encodable value.
func ScalarOf(v any) Scalar {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("aggregator: scalar of %T: %v", v, err))
	}
	return Scalar{raw: raw}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	s.raw = append(s.raw[:0], data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) {
	if s.Missing() {
		return []byte("null"), nil
	}
	return s.raw, nil
}

// Missing reports whether the key was absent.
func (s Scalar) Missing() bool {
	return len(bytes.TrimSpace(s.raw)) == 0
}

func (s Scalar) token() (text string, quoted bool, err error) {
	raw := bytes.TrimSpace(s.raw)
	switch {
	case len(raw) == 0:
		return "", false, errMissing
	case bytes.Equal(raw, []byte("null")):
		return "", false, errNull
	case raw[0] == '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", false, err
		}
		return strings.TrimSpace(str), true, nil
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		return string(raw), false, nil
	default:
		return "", false, errNotNumeric
	}
}

// Int64 coerces the value to an integer the way a timestamp column is read:
// integer literals and numeric strings parse in base 10, fractional JSON numbers
// truncate toward zero, everything else fails.
func (s Scalar) Int64() (int64, error) {
	text, quoted, err := s.token()
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v, nil
	}
	if quoted {
		return 0, fmt.Errorf("parse integer %q: %w", text, errNotNumeric)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", text, err)
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("number %q out of range", text)
	}
	return int64(math.Trunc(f)), nil
}

// Float64 coerces the value to a finite float.
func (s Scalar) Float64() (float64, error) {
	text, _, err := s.token()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse float %q: %w", text, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("float %q is not finite", text)
	}
	return f, nil
}

// BigInt coerces the value to an arbitrary-precision integer. Strings must hold
// a base-10 integer; fractional JSON numbers truncate toward zero.
func (s Scalar) BigInt() (*big.Int, error) {
	text, quoted, err := s.token()
	if err != nil {
		return nil, err
	}
	if v, ok := new(big.Int).SetString(text, 10); ok {
		return v, nil
	}
	if quoted {
		return nil, fmt.Errorf("parse integer %q: %w", text, errNotNumeric)
	}
	f, _, err := big.ParseFloat(text, 10, 256, big.ToZero)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", text, err)
	}
	if f.IsInf() {
		return nil, fmt.Errorf("number %q out of range", text)
	}
	v, _ := f.Int(nil)
	return v, nil
}

func (t RawTransaction) wallet() string {
	if t.UserWallet == nil {
		return ""
	}
	return *t.UserWallet
}

func (t RawTransaction) action() string {
	if t.Action == nil {
		return ""
	}
	return *t.Action
}

func (t RawTransaction) data() ActionData {
	if t.ActionData == nil {
		return ActionData{}
	}
	return *t.ActionData
}

func (d ActionData) symbol() string {
	if d.AssetSymbol == nil {
		return ""
	}
	return *d.AssetSymbol
}

// price applies the "1.0" default for an absent key.
func (d ActionData) price() (float64, error) {
	if d.AssetPriceUSD.Missing() {
		return 1.0, nil
	}
	return d.AssetPriceUSD.Float64()
}

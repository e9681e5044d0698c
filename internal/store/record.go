package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"tgcheck/internal/check"
)

// Metadata keys. These match the files produced by existing tooling, so
// records written elsewhere load unchanged.
const (
	keyPhone          = "phone"
	keySessionFile    = "session_file"
	keyAppID          = "app_id"
	keyAppHash        = "app_hash"
	keyDevice         = "device"
	keySDK            = "sdk"
	keyAppVersion     = "app_version"
	keyLangPack       = "lang_pack"
	keyLangCode       = "lang_code"
	keySystemLangCode = "system_lang_code"
)

// record is the on-disk form of a credential. Keys the store does not know
// about are kept in raw and written back untouched.
type record struct {
	raw map[string]json.RawMessage
}

func newRecord() *record {
	return &record{raw: make(map[string]json.RawMessage)}
}

func parseRecord(data []byte) (*record, error) {
	r := newRecord()
	if err := json.Unmarshal(data, &r.raw); err != nil {
		return nil, err
	}
	if r.raw == nil {
		return nil, fmt.Errorf("metadata is not a JSON object")
	}
	return r, nil
}

func (r *record) getString(key string) (string, error) {
	v, ok := r.raw[key]
	if !ok || string(v) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("field %s: expected string", key)
	}
	return s, nil
}

// getInt accepts both JSON numbers and numeric strings.
func (r *record) getInt(key string) (int, error) {
	v, ok := r.raw[key]
	if !ok || string(v) == "null" {
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(v, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return 0, fmt.Errorf("field %s: expected integer", key)
	}
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("field %s: expected integer", key)
	}
	return n, nil
}

func (r *record) set(key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		// Only strings and ints are stored.
		panic(fmt.Sprintf("marshaling %s: %v", key, err))
	}
	r.raw[key] = data
}

// credential decodes the known fields.
func (r *record) credential(identity string) (*check.Credential, error) {
	cred := &check.Credential{Identity: identity}
	var err error
	strs := []struct {
		key string
		dst *string
	}{
		{keyPhone, &cred.Phone},
		{keySessionFile, &cred.SessionFile},
		{keyAppHash, &cred.Fingerprint.AppHash},
		{keyDevice, &cred.Fingerprint.Device},
		{keySDK, &cred.Fingerprint.SDK},
		{keyAppVersion, &cred.Fingerprint.AppVersion},
		{keyLangPack, &cred.Fingerprint.LangPack},
		{keyLangCode, &cred.Fingerprint.LangCode},
		{keySystemLangCode, &cred.Fingerprint.SystemLangCode},
	}
	for _, s := range strs {
		if *s.dst, err = r.getString(s.key); err != nil {
			return nil, err
		}
	}
	if cred.Fingerprint.AppID, err = r.getInt(keyAppID); err != nil {
		return nil, err
	}
	return cred, nil
}

// setFingerprint overwrites every fingerprint field at once.
func (r *record) setFingerprint(fp check.Fingerprint) {
	r.set(keyAppID, fp.AppID)
	r.set(keyAppHash, fp.AppHash)
	r.set(keyDevice, fp.Device)
	r.set(keySDK, fp.SDK)
	r.set(keyAppVersion, fp.AppVersion)
	r.set(keyLangPack, fp.LangPack)
	r.set(keyLangCode, fp.LangCode)
	r.set(keySystemLangCode, fp.SystemLangCode)
}

func (r *record) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(r.raw, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

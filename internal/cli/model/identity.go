package model

import "encoding/json"

// Identity — профиль вошедшего пользователя, как его отдаёт GET /api/user.
// Поля, которых нет в структуре, сохраняются в Extra без изменений.
type Identity struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	IsVerified bool   `json:"isVerified"`
	Role       string `json:"role,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var identityFields = []string{"_id", "name", "email", "isVerified", "role"}

// UnmarshalJSON decodes the known fields and keeps the rest of the object in Extra.
func (i *Identity) UnmarshalJSON(b []byte) error {
	type plain Identity
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range identityFields {
		delete(all, k)
	}
	p.Extra = nil
	if len(all) > 0 {
		p.Extra = all
	}
	*i = Identity(p)
	return nil
}

// MarshalJSON writes the known fields together with Extra.
func (i Identity) MarshalJSON() ([]byte, error) {
	type plain Identity
	known, err := json.Marshal(plain(i))
	if err != nil || len(i.Extra) == 0 {
		return known, err
	}
	out := make(map[string]json.RawMessage, len(i.Extra)+len(identityFields))
	for k, v := range i.Extra {
		out[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

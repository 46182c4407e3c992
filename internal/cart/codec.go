package cart

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

const cookieName = "dd_cart"
const cartTTL = 7 * 24 * time.Hour

type payload struct {
	Exp  int64 `json:"exp"`
	Cart Cart  `json:"cart"`
}

// Codec reads and writes the signed cart cookie.
type Codec struct {
	hashKey []byte
	secure  bool
}

func NewCodec(hashKey []byte, secure bool) *Codec {
	return &Codec{hashKey: hashKey, secure: secure}
}

// Read returns the cart from the request cookie. A missing, expired or
// tampered cookie yields an empty cart.
func (c *Codec) Read(r *http.Request) *Cart {
	ck, err := r.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return &Cart{}
	}
	var pl payload
	if err := c.verifyJSON(ck.Value, &pl); err != nil {
		return &Cart{}
	}
	if pl.Exp > 0 && time.Now().Unix() > pl.Exp {
		return &Cart{}
	}
	return &pl.Cart
}

func (c *Codec) Write(w http.ResponseWriter, cart *Cart) error {
	pl := payload{Exp: time.Now().Add(cartTTL).Unix(), Cart: *cart}
	val, err := c.signJSON(pl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    val,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
		Expires:  time.Unix(pl.Exp, 0),
	})
	return nil
}

func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.secure,
	})
}

/* ---------- signed cookie helpers ---------- */

func (c *Codec) signJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	return p + "." + c.sign(p), nil
}

func (c *Codec) verifyJSON(s string, out any) error {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return errors.New("bad format")
	}
	p, sig := parts[0], parts[1]
	if !c.verify(p, sig) {
		return errors.New("bad signature")
	}
	raw, err := base64.RawURLEncoding.DecodeString(p)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *Codec) sign(p string) string {
	m := hmac.New(sha256.New, c.hashKey)
	_, _ = m.Write([]byte(p))
	return hex.EncodeToString(m.Sum(nil))
}

func (c *Codec) verify(p, sigHex string) bool {
	got, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}
	m := hmac.New(sha256.New, c.hashKey)
	_, _ = m.Write([]byte(p))
	return hmac.Equal(got, m.Sum(nil))
}

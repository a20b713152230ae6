package domain

// Claims is the identity payload a session carries. Whatever the client
// posted to /jwt is signed as-is; only "email" is required.
type Claims map[string]any

// registered JWT claims added at issuance and stripped on verification
var registered = []string{"exp", "iat", "nbf"}

func (c Claims) Email() string {
	email, _ := c["email"].(string)
	return email
}

// Identity returns a copy without the registered JWT claims.
func (c Claims) Identity() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, k := range registered {
		delete(out, k)
	}
	return out
}

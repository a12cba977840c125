package audit

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize_NestedUser(t *testing.T) {
	in := map[string]any{
		"user": map[string]any{"password": "abc", "name": "Jo"},
	}
	out := Sanitize(in)

	assert.Equal(t, map[string]any{
		"user": map[string]any{"password": Redacted, "name": "Jo"},
	}, out)
	assert.Equal(t, "abc", in["user"].(map[string]any)["password"], "input must not be modified")
}

func TestIsSensitiveKey(t *testing.T) {
	for _, k := range []string{"password", "newPassword", "PASSWORD_HASH", "accessToken", "refresh_token",
		"clientSecret", "apiKey", "X-API-KEY", "api_key"} {
		assert.True(t, IsSensitiveKey(k), k)
	}
	for _, k := range []string{"name", "amount", "bank", "receiptNumber", "api", "key"} {
		assert.False(t, IsSensitiveKey(k), k)
	}
}

func TestSanitize_ArraysAndTypedValues(t *testing.T) {
	type credentials struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	in := map[string]any{
		"items":  []any{map[string]any{"token": "t1"}, map[string]any{"label": "ok"}},
		"creds":  credentials{Login: "admin", Password: "hunter2"},
		"params": map[string]string{"id": "42", "apiKey": "k"},
	}

	raw, err := json.Marshal(Sanitize(in))
	require.NoError(t, err)
	s := string(raw)

	assert.NotContains(t, s, "t1")
	assert.NotContains(t, s, "hunter2")
	assert.NotContains(t, s, `"k"`)
	assert.Contains(t, s, "admin")
	assert.Contains(t, s, "ok")
	assert.Contains(t, s, "42")
}

func TestSanitize_DepthBound(t *testing.T) {
	var v any = map[string]any{"password": "deep-secret"}
	for i := 0; i < 100; i++ {
		v = map[string]any{"next": v}
	}

	raw, err := json.Marshal(Sanitize(v))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "deep-secret")
	assert.Contains(t, string(raw), Truncated)
}

// randomPayload builds an arbitrary JSON-like tree, hiding secret values
// under sensitive keys of random case at random depths.
func randomPayload(rnd *rand.Rand, depth int, secrets *[]string) any {
	if depth > 6 || rnd.Intn(4) == 0 {
		return fmt.Sprintf("plain-%d", rnd.Intn(1000))
	}
	if rnd.Intn(3) == 0 {
		arr := make([]any, rnd.Intn(4))
		for i := range arr {
			arr[i] = randomPayload(rnd, depth+1, secrets)
		}
		return arr
	}
	m := map[string]any{}
	for i := 0; i < rnd.Intn(4)+1; i++ {
		if rnd.Intn(3) == 0 {
			frag := sensitiveFragments[rnd.Intn(len(sensitiveFragments))]
			key := "x" + randomCase(rnd, frag) + "Field"
			secret := fmt.Sprintf("SECRET-%d-%d", depth, rnd.Int())
			*secrets = append(*secrets, secret)
			if rnd.Intn(2) == 0 {
				m[key] = secret
			} else {
				m[key] = map[string]any{"nested": secret}
			}
			continue
		}
		m[fmt.Sprintf("k%d", i)] = randomPayload(rnd, depth+1, secrets)
	}
	return m
}

func randomCase(rnd *rand.Rand, s string) string {
	var b strings.Builder
	for _, r := range s {
		if rnd.Intn(2) == 0 {
			b.WriteString(strings.ToUpper(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestSanitize_NeverLeaksSensitiveValues(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var secrets []string
		payload := randomPayload(rnd, 0, &secrets)

		raw, err := json.Marshal(Sanitize(payload))
		require.NoError(t, err)
		for _, secret := range secrets {
			assert.NotContains(t, string(raw), secret)
		}
	}
}

func TestSanitizeBody(t *testing.T) {
	assert.Nil(t, SanitizeBody(nil))
	assert.Equal(t, map[string]any{"password": Redacted, "username": "admin"},
		SanitizeBody([]byte(`{"username":"admin","password":"x"}`)))
	assert.Equal(t, "[non-JSON body, 17 bytes]", SanitizeBody([]byte("password=x&user=y")))
}

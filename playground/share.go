package playground

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/FlorianRuen/devhub/model"
)

const sharePrefix = "shared="

// EncodeFragment encodes the code into the share fragment, without the leading #
func EncodeFragment(code model.CodeState) string {
	// marshalling a struct of strings can't fail
	raw, _ := json.Marshal(code)
	return sharePrefix + base64.StdEncoding.EncodeToString(raw)
}

// ShareURL appends the share fragment to the playground url, replacing any existing fragment
func ShareURL(baseURL string, code model.CodeState) string {
	if i := strings.Index(baseURL, "#"); i >= 0 {
		baseURL = baseURL[:i]
	}

	return baseURL + "#" + EncodeFragment(code)
}

// DecodeFragment decodes a shared code state
// it accepts the bare fragment, the fragment with its leading # or a full share url
func DecodeFragment(raw string) (model.CodeState, error) {
	var code model.CodeState

	fragment := strings.TrimSpace(raw)
	if i := strings.Index(fragment, "#"); i >= 0 {
		fragment = fragment[i+1:]
	}

	if !strings.HasPrefix(fragment, sharePrefix) {
		return code, fmt.Errorf("%w: missing %q prefix", model.ErrInvalidShareLink, sharePrefix)
	}

	encoded := strings.TrimPrefix(fragment, sharePrefix)

	// some clients percent-encode the fragment when copying links around
	if unescaped, err := url.PathUnescape(encoded); err == nil {
		encoded = unescaped
	}

	raw64, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// atob accepts links whose padding was stripped
		if raw64, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return code, fmt.Errorf("%w: %v", model.ErrInvalidShareLink, err)
		}
	}

	// btoa writes one byte per character, so links from the web client hold latin-1 text
	if !utf8.Valid(raw64) {
		raw64 = latin1ToUTF8(raw64)
	}

	if err := json.Unmarshal(raw64, &code); err != nil {
		return model.CodeState{}, fmt.Errorf("%w: %v", model.ErrInvalidShareLink, err)
	}

	return code, nil
}

func latin1ToUTF8(raw []byte) []byte {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		runes = append(runes, rune(b))
	}

	return []byte(string(runes))
}

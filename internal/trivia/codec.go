package trivia

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// Button custom_ids carry the whole state of a trivia round across the wire:
// a correctness flag for the clicked button plus the correct answer's text,
// so the click can be judged and the right answer revealed without any stored
// session. A button index is included so every id in a message is unique,
// which the platform requires. The encoding is versioned and validated
// defensively, because custom_ids come back from the client and the platform
// does not protect them cryptographically. A user can therefore forge a
// "correct" click; that is an accepted trust boundary of the design, not
// something this codec prevents.
const (
	idPrefix  = "trivia"
	idVersion = "v1"

	flagCorrect = "c"
	flagWrong   = "w"

	// maxCustomIDLen is Discord's limit on custom_id length.
	maxCustomIDLen = 100
)

// EncodeAnswer builds the custom_id for the answer button at the given
// index. The correct answer's text is embedded base64url-encoded; if it
// would push the id past the platform's length limit it is truncated to fit.
func EncodeAnswer(index int, correct bool, correctAnswer string) string {
	flag := flagWrong
	if correct {
		flag = flagCorrect
	}

	head := strings.Join([]string{idPrefix, idVersion, flag, strconv.Itoa(index), ""}, ":")
	budget := maxCustomIDLen - len(head)

	encoded := base64.RawURLEncoding.EncodeToString([]byte(correctAnswer))
	for len(encoded) > budget {
		runes := []rune(correctAnswer)
		correctAnswer = string(runes[:len(runes)-1])
		encoded = base64.RawURLEncoding.EncodeToString([]byte(correctAnswer))
	}

	return head + encoded
}

// DecodeAnswer parses a custom_id produced by EncodeAnswer. It rejects
// anything that does not match the versioned shape exactly.
func DecodeAnswer(customID string) (correct bool, correctAnswer string, err error) {
	if len(customID) > maxCustomIDLen {
		return false, "", fmt.Errorf("custom_id too long")
	}

	parts := strings.Split(customID, ":")
	if len(parts) != 5 {
		return false, "", fmt.Errorf("custom_id has %d fields, want 5", len(parts))
	}
	if parts[0] != idPrefix {
		return false, "", fmt.Errorf("unrecognized custom_id prefix %q", parts[0])
	}
	if parts[1] != idVersion {
		return false, "", fmt.Errorf("unsupported custom_id version %q", parts[1])
	}

	switch parts[2] {
	case flagCorrect:
		correct = true
	case flagWrong:
		correct = false
	default:
		return false, "", fmt.Errorf("invalid correctness flag %q", parts[2])
	}

	if _, err := strconv.Atoi(parts[3]); err != nil {
		return false, "", fmt.Errorf("invalid button index %q", parts[3])
	}

	decoded, err := base64.RawURLEncoding.DecodeString(parts[4])
	if err != nil {
		return false, "", fmt.Errorf("decoding answer text: %w", err)
	}

	return correct, string(decoded), nil
}

// IsAnswerID reports whether the custom_id belongs to a trivia answer button.
func IsAnswerID(customID string) bool {
	return strings.HasPrefix(customID, idPrefix+":")
}

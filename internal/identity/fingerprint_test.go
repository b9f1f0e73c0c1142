package identity

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestFingerprintDeterminism(t *testing.T) {
	a := Fingerprint("Marie", "Dupont", "France")
	b := Fingerprint("Marie", "Dupont", "France")
	assert.Equal(t, a, b)
	assert.Regexp(t, hexDigest, a)
}

func TestFingerprintCaseAndAccentInsensitive(t *testing.T) {
	base := Fingerprint("marie", "dupont", "france")
	assert.Equal(t, base, Fingerprint("MARIE", "Dupont", "France"))
	assert.Equal(t, base, Fingerprint("Marié", "Dupont", "France"))
	assert.Equal(t, base, Fingerprint("  Marie  ", "Dupont", "FRANCE"))
}

func TestFingerprintCompoundFirstNameCollapses(t *testing.T) {
	base := Fingerprint("Marie", "Dupont", "France")
	assert.Equal(t, base, Fingerprint("Marie-Anne", "Dupont", "France"))
	assert.Equal(t, base, Fingerprint("Marie Anne", "Dupont", "France"))
	assert.Equal(t, base, Fingerprint("marie-anne sophie", "Dupont", "France"))
}

func TestFingerprintSurnameCollapses(t *testing.T) {
	base := Fingerprint("Jean", "DelaCruz", "Spain")
	assert.Equal(t, base, Fingerprint("Jean", "De La Cruz", "Spain"))
	assert.Equal(t, base, Fingerprint("Jean", "de-la-cruz", "Spain"))
}

func TestFingerprintDistinctness(t *testing.T) {
	assert.NotEqual(t,
		Fingerprint("Marie", "Dupont", "France"),
		Fingerprint("Marie", "Dupond", "France"),
	)
	assert.NotEqual(t,
		Fingerprint("Marie", "Dupont", "France"),
		Fingerprint("Marie", "Dupont", "Belgium"),
	)
	assert.NotEqual(t,
		Fingerprint("Marie", "Dupont", "France"),
		Fingerprint("Anne", "Dupont", "France"),
	)
}

func TestFingerprintDegenerateInput(t *testing.T) {
	// Empty fields are legal; validation happens above this layer.
	a := Fingerprint("", "", "")
	b := Fingerprint("", "", "")
	assert.Equal(t, a, b)
	assert.Regexp(t, hexDigest, a)
}

func TestNormalizeFirstName(t *testing.T) {
	assert.Equal(t, "marie", NormalizeFirstName("Marie-Anne"))
	assert.Equal(t, "jean", NormalizeFirstName("Jean Pierre"))
	assert.Equal(t, "jose", NormalizeFirstName("José"))
	assert.Equal(t, "", NormalizeFirstName("   "))
}

func TestNormalizeLastName(t *testing.T) {
	assert.Equal(t, "delacruz", NormalizeLastName("De La Cruz"))
	assert.Equal(t, "vanberg", NormalizeLastName("Van-Berg"))
	assert.Equal(t, "muller", NormalizeLastName("Müller"))
}

// Pin the exact digest so the key stays wire-compatible with clients that
// compute it independently.
func TestFingerprintStableValue(t *testing.T) {
	// sha256("jean|dupont|france")
	const want = "1c2f35cb4d0ed3d82ba3072df8a007bcdfedd7d19a4d5940240f98a2e89c0f42"
	assert.Equal(t, want, Fingerprint("Jean", "Dupont", "France"))
}

package protocol

import (
	"errors"
	"strings"
	"testing"

	gc "gopkg.in/check.v1"
)

type ValidatorSuite struct{}

func (s *ValidatorSuite) TestTokenValidationCases(c *gc.C) {
	var cases = []struct {
		token  string
		expect string
	}{
		{"sjc1-1", ""},           // Success.
		{"us-east/rack_2.a", ""}, // Success.
		{"", `invalid length \(0; expected 1 <= length <= 32\)`},
		{strings.Repeat("a", 33), `invalid length \(33; expected 1 <= length <= 32\)`},
		{"rack#1", `not a valid token \(rack#1\)`},
		{"rack 1", `not a valid token \(rack 1\)`},
	}
	for _, tc := range cases {
		if tc.expect == "" {
			c.Check(ValidateToken(tc.token, 1, 32), gc.IsNil)
		} else {
			c.Check(ValidateToken(tc.token, 1, 32), gc.ErrorMatches, tc.expect)
		}
	}
}

func (s *ValidatorSuite) TestExtendContext(c *gc.C) {
	var err = NewValidationError("whoops")
	err = ExtendContext(err, "Inner")
	err = ExtendContext(err, "Outer[%d]", 3)
	c.Check(err, gc.ErrorMatches, `Outer\[3\].Inner: whoops`)

	// Non-ValidationErrors pass through unmodified.
	var plain = errors.New("plain")
	c.Check(ExtendContext(plain, "Ignored"), gc.Equals, plain)

	// ValidationErrors unwrap to their cause.
	var ve *ValidationError
	c.Check(errors.As(err, &ve), gc.Equals, true)
	c.Check(ve.Context, gc.DeepEquals, []string{"Outer[3]", "Inner"})
}

func (s *ValidatorSuite) TestNumericBounds(c *gc.C) {
	c.Check(ValidateNonNegative(0, "Shards"), gc.IsNil)
	c.Check(ValidateNonNegative(-1, "Shards"), gc.ErrorMatches,
		`invalid Shards \(-1; expected Shards >= 0\)`)
	c.Check(ValidatePositive(1, "Replicas"), gc.IsNil)
	c.Check(ValidatePositive(0, "Replicas"), gc.ErrorMatches,
		`invalid Replicas \(0; expected Replicas >= 1\)`)
}

var _ = gc.Suite(&ValidatorSuite{})

func Test(t *testing.T) { gc.TestingT(t) }

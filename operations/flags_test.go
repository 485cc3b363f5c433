package operations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli"
)

func TestBaseFlags(t *testing.T) {
	assert := assert.New(t)

	flags := mergeFlags(baseFlags(), dbFlags(), routeFlags())
	flagMap := map[string]cli.Flag{}
	for _, f := range flags {
		flagMap[f.GetName()] = f
	}

	expected := []string{"workers", "dbUri", "dbName", "bucket", "scenario", "method", "seed", "samples", "obstacles"}
	for _, n := range expected {
		_, ok := flagMap[n]
		assert.True(ok, n)
	}
}

func TestMergeFlagsPreservesOrder(t *testing.T) {
	flags := mergeFlags(
		[]cli.Flag{cli.StringFlag{Name: "first"}},
		[]cli.Flag{cli.StringFlag{Name: "second"}},
	)

	assert.Len(t, flags, 2)
	assert.Equal(t, "first", flags[0].GetName())
	assert.Equal(t, "second", flags[1].GetName())
}

func TestJoinFlagNames(t *testing.T) {
	assert.Equal(t, "output, o", joinFlagNames("output", "o"))
}

package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	info := Current()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.Module)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	out := Info{
		Version:   "1.2.0",
		Commit:    "abc123",
		BuildDate: "2024-05-01",
		Module:    "wallet-credit-score",
		GoVersion: "go1.24.2",
		Platform:  "linux/amd64",
	}.String()

	assert.Equal(t, "walletscore 1.2.0\nmodule: wallet-credit-score\ncommit: abc123\nbuilt: 2024-05-01\ngo: go1.24.2 (linux/amd64)\n", out)
	assert.Equal(t, "walletscore/"+Version, UserAgent())
}

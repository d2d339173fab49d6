package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulYuuu/guisu/pkg/errors"
)

func TestNewAbsoluteRejectsRelativeInput(t *testing.T) {
	_, err := NewAbsolute("relative/path")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotAbsolute))
}

func TestNewAbsoluteAcceptsAndCleansAbsoluteInput(t *testing.T) {
	a, err := NewAbsolute("/home/user/../user/dotfiles")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/dotfiles", a.String())
	assert.False(t, a.IsZero())
}

func TestMustAbsolutePanicsOnRelativeInput(t *testing.T) {
	assert.Panics(t, func() { MustAbsolute("relative/path") })
}

func TestMustAbsoluteReturnsValueOnSuccess(t *testing.T) {
	var a AbsolutePath
	assert.NotPanics(t, func() { a = MustAbsolute("/src") })
	assert.Equal(t, "/src", a.String())
}

func TestJoinDestAndJoinSource(t *testing.T) {
	root := MustAbsolute("/home/user")
	destRel, err := NewDestinationRelative(".bashrc")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/.bashrc", root.JoinDest(destRel).String())

	sourceRel, err := NewSourceRelative("dot_bashrc")
	require.NoError(t, err)
	assert.Equal(t, "/home/user/dot_bashrc", root.JoinSource(sourceRel).String())
}

func TestDirReturnsParent(t *testing.T) {
	a := MustAbsolute("/home/user/.config/nvim")
	assert.Equal(t, "/home/user/.config", a.Dir().String())
}

func TestStripDestPrefixSucceedsUnderBase(t *testing.T) {
	base := MustAbsolute("/home/user")
	target := MustAbsolute("/home/user/.config/nvim")
	rel, err := target.StripDestPrefix(base)
	require.NoError(t, err)
	assert.Equal(t, ".config/nvim", rel.String())
}

func TestStripDestPrefixRejectsWrongRoot(t *testing.T) {
	base := MustAbsolute("/home/user")
	other := MustAbsolute("/var/log/syslog")
	_, err := other.StripDestPrefix(base)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidPathPrefix))
}

func TestStripSourcePrefixSucceedsUnderBase(t *testing.T) {
	base := MustAbsolute("/dotfiles")
	target := MustAbsolute("/dotfiles/dot_bashrc")
	rel, err := target.StripSourcePrefix(base)
	require.NoError(t, err)
	assert.Equal(t, "dot_bashrc", rel.String())
}

func TestStripSourcePrefixRejectsWrongRoot(t *testing.T) {
	base := MustAbsolute("/dotfiles")
	other := MustAbsolute("/etc/passwd")
	_, err := other.StripSourcePrefix(base)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidPathPrefix))
}

func TestStripDestPrefixOfBaseItselfYieldsEmptyRelative(t *testing.T) {
	base := MustAbsolute("/home/user")
	rel, err := base.StripDestPrefix(base)
	require.NoError(t, err)
	assert.Equal(t, "", rel.String())
}

func TestNewDestinationRelativeRejectsAbsoluteInput(t *testing.T) {
	_, err := NewDestinationRelative("/etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotRelative))
}

func TestNewDestinationRelativeRejectsUpwardTraversal(t *testing.T) {
	_, err := NewDestinationRelative("../../etc/passwd")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotRelative))
}

func TestNewDestinationRelativeRejectsBareDotDot(t *testing.T) {
	_, err := NewDestinationRelative("..")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotRelative))
}

func TestNewDestinationRelativeNormalizesDot(t *testing.T) {
	rel, err := NewDestinationRelative(".")
	require.NoError(t, err)
	assert.Equal(t, "", rel.String())
}

func TestDestinationRelativeJoinAndDirAndLess(t *testing.T) {
	a, err := NewDestinationRelative(".config")
	require.NoError(t, err)
	b, err := NewDestinationRelative("nvim/init.lua")
	require.NoError(t, err)

	joined := a.Join(b)
	assert.Equal(t, ".config/nvim/init.lua", joined.String())
	assert.Equal(t, ".config/nvim", joined.Dir().String())

	top, err := NewDestinationRelative(".bashrc")
	require.NoError(t, err)
	assert.Equal(t, "", top.Dir().String())

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
}

func TestNewSourceRelativeRejectsAbsoluteInput(t *testing.T) {
	_, err := NewSourceRelative("/dotfiles/dot_bashrc")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotRelative))
}

func TestNewSourceRelativeRejectsUpwardTraversal(t *testing.T) {
	_, err := NewSourceRelative("../outside")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrPathNotRelative))
}

func TestSourceRelativeJoinAndDir(t *testing.T) {
	a, err := NewSourceRelative("dot_config")
	require.NoError(t, err)
	b, err := NewSourceRelative("nvim/init.lua")
	require.NoError(t, err)

	joined := a.Join(b)
	assert.Equal(t, "dot_config/nvim/init.lua", joined.String())
	assert.Equal(t, "dot_config/nvim", joined.Dir().String())
}

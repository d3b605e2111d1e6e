package dexwriter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dexfmt/dexwriter/format"
	"github.com/dexfmt/dexwriter/program"
)

func samplePools(t *testing.T) *program.Pools {
	t.Helper()

	classType := program.NewType("Lcom/example/Main;")
	proto := &program.Proto{ReturnType: program.NewType("V")}

	b := program.NewBuilder()
	b.AddClass(&program.Class{
		Type:       classType,
		SuperType:  program.NewType("Ljava/lang/Object;"),
		SourceFile: "Main.java",
		DirectMethods: []*program.EncodedMethod{{
			Method:      &program.Method{Class: classType, Proto: proto, Name: "main"},
			AccessFlags: format.AccPublic | format.AccStatic,
			Code:        &program.Code{RegistersSize: 1, Instructions: []uint16{0x000e}},
		}},
	})

	pools, err := b.Build()
	require.NoError(t, err)

	return pools
}

func TestGenerate(t *testing.T) {
	image, err := Generate(samplePools(t), 26)
	require.NoError(t, err)
	require.Equal(t, []byte("dex\n038\x00"), image[0:8])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.dex")

	n, err := WriteFile(path, samplePools(t), 26)
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, written, n)

	direct, err := Generate(samplePools(t), 26)
	require.NoError(t, err)
	require.Equal(t, direct, written)
}

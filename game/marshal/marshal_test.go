package marshal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbound(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{name: "json", data: []byte(`{"Move":5}`), want: `{"Move":5}`},
		{name: "empty", data: []byte{}, want: ""},
		{name: "unicode", data: []byte(`"héllo"`), want: `"héllo"`},
		{name: "invalid utf8", data: []byte{'"', 0xff, '"'}, wantErr: ErrInvalidUTF8},
		{name: "interior nul", data: []byte("Qu\x00it"), wantErr: ErrInteriorNUL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Inbound(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInbound_DoesNotRetainBuffer(t *testing.T) {
	data := []byte(`"Quit"`)
	got, err := Inbound(data)
	require.NoError(t, err)

	data[1] = 'X'
	assert.Equal(t, `"Quit"`, got)
}

func TestSlot(t *testing.T) {
	alloc := NewGoAllocator()
	slot := NewSlot(alloc)

	t.Run("empty until stored", func(t *testing.T) {
		p := slot.Pointer()
		require.NotNil(t, p)
		assert.Equal(t, "", GoString(p))
		assert.Equal(t, 1, alloc.Live())
	})

	t.Run("store replaces and frees", func(t *testing.T) {
		first, err := slot.Store("first")
		require.NoError(t, err)
		assert.Equal(t, "first", GoString(first))
		assert.Equal(t, first, slot.Pointer())

		second, err := slot.Store("second")
		require.NoError(t, err)
		assert.Equal(t, "second", slot.String())
		assert.Equal(t, 1, alloc.Live())
		assert.NotEqual(t, first, second)
	})

	t.Run("pointer is stable between stores", func(t *testing.T) {
		assert.Equal(t, slot.Pointer(), slot.Pointer())
	})

	t.Run("interior nul keeps previous buffer", func(t *testing.T) {
		before := slot.Pointer()
		_, err := slot.Store("bad\x00string")
		assert.ErrorIs(t, err, ErrInteriorNUL)
		assert.Equal(t, before, slot.Pointer())
		assert.Equal(t, "second", slot.String())
	})

	t.Run("release frees", func(t *testing.T) {
		slot.Release()
		assert.Equal(t, 0, alloc.Live())
		assert.Equal(t, "", slot.String())
		slot.Release()
	})
}

func TestGoString_Nil(t *testing.T) {
	assert.Equal(t, "", GoString(nil))
}

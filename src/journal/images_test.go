package journal

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddImageCap(t *testing.T) {
	f := Field{ID: "chart_img", Type: FieldImage}

	for i := 0; i < MaxFieldImages; i++ {
		require.NoError(t, f.AddImage(fmt.Sprintf("data:image/png;base64,IMG%d", i)))
	}
	require.Len(t, f.Images, MaxFieldImages)

	err := f.AddImage("data:image/png;base64,EXTRA")
	assert.ErrorIs(t, err, ErrImageLimit)
	assert.Len(t, f.Images, MaxFieldImages, "rejected payload must not be appended")
	assert.Equal(t, "data:image/png;base64,IMG3", f.Images[MaxFieldImages-1])
}

func TestAddImageWrongFieldType(t *testing.T) {
	f := Field{ID: "target", Type: FieldText}
	assert.Error(t, f.AddImage("data:image/png;base64,AAAA"))
}

func TestRemoveImage(t *testing.T) {
	f := Field{ID: "chart_img", Type: FieldImage, Images: []string{"a", "b", "c"}}

	assert.True(t, f.RemoveImage(1))
	assert.Equal(t, []string{"a", "c"}, f.Images)

	assert.False(t, f.RemoveImage(5))
	assert.False(t, f.RemoveImage(-1))
	assert.Equal(t, []string{"a", "c"}, f.Images)

	assert.True(t, f.RemoveImage(0))
	assert.True(t, f.RemoveImage(0))
	assert.Empty(t, f.Images)
	assert.False(t, f.RemoveImage(0))
}

func TestImageOrderSurvivesRoundTrip(t *testing.T) {
	f := Field{ID: "chart_img", Label: "Print da Operação", Type: FieldImage}
	require.NoError(t, f.AddImage("primeiro"))
	require.NoError(t, f.AddImage("segundo"))
	require.NoError(t, f.AddImage("terceiro"))
	require.True(t, f.RemoveImage(1))

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var got Field
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, []string{"primeiro", "terceiro"}, got.Images)
}

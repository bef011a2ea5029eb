package inputval

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dalemusser/iglesiahub/internal/app/system/apperr"
)

func TestUniqueIDs(t *testing.T) {
	got, err := UniqueIDs([]int64{3, 1, 3, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int64{3, 1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	got, err = UniqueIDs(nil)
	if err != nil || len(got) != 0 || got == nil {
		t.Errorf("nil input: got (%v, %v), want empty non-nil slice", got, err)
	}

	if _, err := UniqueIDs([]int64{1, 0}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero id: err = %v", err)
	}
}

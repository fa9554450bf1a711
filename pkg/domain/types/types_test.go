package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/actsync/pkg/domain/types"
)

func TestNewActionKey(t *testing.T) {
	key := types.NewActionKey("actions", "checkout")
	gt.Value(t, key).Equal(types.ActionKey("actions/checkout"))
	gt.Value(t, key.String()).Equal("actions/checkout")
}

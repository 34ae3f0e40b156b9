package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/types/common"
)

func TestProcessBatchMixedOutcomes(t *testing.T) {
	fx := newFixture(t)

	inputs := []BatchInput{
		{Text: "first report", Filename: "a.txt"},
		{Text: "   ", Filename: "blank.txt"},
		{Text: "third report", Filename: "c.txt"},
	}
	out, err := fx.svc.ProcessBatch(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Total)
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Items, 3)

	assert.NotNil(t, out.Items[0].Result)
	require.NotNil(t, out.Items[1].Error)
	assert.Equal(t, string(errors.ErrCodeRecordEmptyText), out.Items[1].Error.Code)
	assert.Nil(t, out.Items[1].Result)
	assert.NotNil(t, out.Items[2].Result)

	assert.Equal(t, 2, out.ByRisk[common.RiskHigh])
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	fx := newFixture(t)

	inputs := make([]BatchInput, 9)
	for i := range inputs {
		inputs[i] = BatchInput{Text: "report body", Filename: "r.txt"}
	}
	out, err := fx.svc.ProcessBatch(context.Background(), inputs)
	require.NoError(t, err)

	for i, item := range out.Items {
		assert.Equal(t, i, item.Index)
		assert.NotNil(t, item.Result, "item %d", i)
	}
	assert.Equal(t, 9, out.Succeeded)
}

func TestProcessBatchEmpty(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.ProcessBatch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

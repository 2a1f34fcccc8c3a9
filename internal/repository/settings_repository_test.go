package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/model"
)

func valueRow(v string) pgx.Row {
	return &mockRow{scanFn: func(dest ...any) error {
		*dest[0].(*string) = v
		return nil
	}}
}

func TestSettingsRepository_GetOrderMode(t *testing.T) {
	tests := []struct {
		name    string
		row     pgx.Row
		want    model.OrderMode
		wantErr bool
	}{
		{name: "preorder", row: valueRow("preorder"), want: model.OrderModePreorder},
		{name: "stock based", row: valueRow("stock_based"), want: model.OrderModeStockBased},
		{name: "unset defaults to stock based", row: errRow(pgx.ErrNoRows), want: model.OrderModeStockBased},
		{name: "garbage", row: valueRow("sometimes"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockPool{
				queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return tt.row },
			}
			mode, err := NewSettingsRepositoryWithPool(mock).GetOrderMode(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
		})
	}
}

func TestSettingsRepository_SetOrderMode(t *testing.T) {
	var capturedArgs []any
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	require.NoError(t, NewSettingsRepositoryWithPool(mock).SetOrderMode(context.Background(), model.OrderModePreorder))
	assert.Equal(t, []any{"order_mode", "preorder"}, capturedArgs)
}

func TestPackRepository_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := &mockPool{
			queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
				return &mockRow{scanFn: func(dest ...any) error {
					*dest[0].(*string) = "box-6"
					*dest[1].(*string) = "Box of six"
					*dest[2].(*int) = 6
					*dest[3].(*string) = "mini"
					*dest[4].(*decimal.Decimal) = decimal.RequireFromString("18.00")
					*dest[5].(*bool) = true
					return nil
				}}
			},
		}
		p, err := NewPackRepositoryWithPool(mock).GetByID(context.Background(), "box-6")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, 6, p.FlavorCount)
		assert.Equal(t, model.SizeMini, p.Size)
	})

	t.Run("missing", func(t *testing.T) {
		mock := &mockPool{
			queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row { return errRow(pgx.ErrNoRows) },
		}
		p, err := NewPackRepositoryWithPool(mock).GetByID(context.Background(), "box-6")
		require.NoError(t, err)
		assert.Nil(t, p)
	})
}

func TestDeliveryZoneRepository_GetByID(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error {
				*dest[0].(*string) = "downtown"
				*dest[1].(*string) = "Downtown"
				*dest[2].(*decimal.Decimal) = decimal.RequireFromString("5.00")
				*dest[3].(*bool) = true
				return nil
			}}
		},
	}

	z, err := NewDeliveryZoneRepositoryWithPool(mock).GetByID(context.Background(), "downtown")

	require.NoError(t, err)
	require.NotNil(t, z)
	assert.Equal(t, "5", z.Fee.String())
}

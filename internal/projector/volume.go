package projector

import (
	"context"
	"math/big"

	"github.com/feral-file/ff-projector/internal/domain"
	"github.com/feral-file/ff-projector/internal/store"
	"github.com/feral-file/ff-projector/internal/store/schema"
)

// updateTokenVolume adds a fill's volume to the token's all-time and daily totals
func updateTokenVolume(ctx context.Context, tx store.Store, token string, volume *big.Int, timestamp int64) error {
	t, err := mustLoad[schema.Token](ctx, tx, token)
	if err != nil {
		return err
	}
	if t.TotalVolume, err = add(t.TotalVolume, volume); err != nil {
		return err
	}

	day := domain.DayBucket(timestamp)
	id := domain.TokenDayKey(token, day)
	dayData, _, err := getOrCreate(ctx, tx, id, func() *schema.TokenDayData {
		return &schema.TokenDayData{ID: id, Token: token, Day: day, StartTimestamp: day * domain.SecondsPerDay}
	})
	if err != nil {
		return err
	}
	if dayData.Volume, err = add(dayData.Volume, volume); err != nil {
		return err
	}
	return save(ctx, tx, t, dayData)
}

// updateAccountDailyVolume adds volume to an account's totals and its daily bucket in token.
// The first bucket of a UTC day, across all tokens, counts as an active day.
func updateAccountDailyVolume(ctx context.Context, tx store.Store, account, token string, volume *big.Int, isBuyer bool, timestamp int64) error {
	day := domain.DayBucket(timestamp)
	id := domain.AccountDayKey(account, token, day)
	dayData, created, err := getOrCreate(ctx, tx, id, func() *schema.AccountDayData {
		return &schema.AccountDayData{ID: id, Account: account, Token: token, Day: day, StartTimestamp: day * domain.SecondsPerDay}
	})
	if err != nil {
		return err
	}

	newDay := false
	if created {
		n, err := tx.Count(ctx, &schema.AccountDayData{}, map[string]interface{}{"account": account, "day": day})
		if err != nil {
			return err
		}
		newDay = n == 0
	}

	if dayData.Volume, err = add(dayData.Volume, volume); err != nil {
		return err
	}
	if isBuyer {
		dayData.VolumeAsBuyer, err = add(dayData.VolumeAsBuyer, volume)
	} else {
		dayData.VolumeAsSeller, err = add(dayData.VolumeAsSeller, volume)
	}
	if err != nil {
		return err
	}
	if err := save(ctx, tx, dayData); err != nil {
		return err
	}

	return updateAccount(ctx, tx, account, func(a *schema.Account) error {
		var err error
		if newDay {
			a.ActiveDaysCount++
		}
		if a.Volume, err = add(a.Volume, volume); err != nil {
			return err
		}
		if isBuyer {
			a.VolumeAsBuyer, err = add(a.VolumeAsBuyer, volume)
		} else {
			a.VolumeAsSeller, err = add(a.VolumeAsSeller, volume)
		}
		return err
	})
}

package enrollment

import (
	"context"

	"github.com/shopspring/decimal"
)

// SeedDemoStudents loads a small roster for development runs without a
// database. Production rosters come from the external enrollment process.
func SeedDemoStudents(ctx context.Context, store StudentStore) error {
	students := []Student{
		{StudentID: "2020-TWC-1223", Name: "Alice Mwangi", Enrolled: true, Balance: decimal.NewFromFloat(1250.50)},
		{StudentID: "2021-TWC-0418", Name: "Brian Otieno", Enrolled: true, Balance: decimal.NewFromFloat(300.00)},
		{StudentID: "2019-TWC-0007", Name: "Carol Njeri", Enrolled: false, Balance: decimal.NewFromFloat(0)},
	}
	for _, s := range students {
		if err := store.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

package validate_test

import (
	"testing"

	"github.com/ardanlabs/escrow/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type lockRequest struct {
	Account string `json:"account" validate:"required,account"`
	Amount  string `json:"amount" validate:"required,amount"`
	End     uint64 `json:"end" validate:"gt=0"`
}

func TestCheck(t *testing.T) {
	type table struct {
		name   string
		req    lockRequest
		fields []string
	}

	tt := []table{
		{name: "valid", req: lockRequest{Account: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", Amount: "1000", End: 1}},
		{name: "account", req: lockRequest{Account: "F01813E4B85e178A83e29B8E7bF26BD830a25f32", Amount: "1000", End: 1}, fields: []string{"account"}},
		{name: "amount", req: lockRequest{Account: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", Amount: "-10", End: 1}, fields: []string{"amount"}},
		{name: "all", req: lockRequest{}, fields: []string{"account", "amount", "end"}},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen checking a %s request.", testID, tst.name)
			{
				f := func(t *testing.T) {
					err := validate.Check(tst.req)
					if len(tst.fields) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould pass validation: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
						return
					}

					if !validate.IsFieldErrors(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
					}

					fields := validate.GetFieldErrors(err).Fields()
					for _, name := range tst.fields {
						if fields[name] == "" {
							t.Fatalf("\t%s\tTest %d:\tShould report the %s field: %v", failed, testID, name, fields)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould report the failing fields.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

package validate_test

import (
	"testing"

	"github.com/ardanlabs/gossipchain/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type newAddress struct {
	Name      string `json:"name" validate:"required"`
	PublicKey string `json:"publicKey" validate:"required,hexadecimal"`
}

func Test_Check(t *testing.T) {
	type table struct {
		name   string
		val    newAddress
		fields []string
	}

	tt := []table{
		{name: "valid", val: newAddress{Name: "bill", PublicKey: "04ab"}},
		{name: "missing", val: newAddress{}, fields: []string{"name", "publicKey"}},
		{name: "nothex", val: newAddress{Name: "bill", PublicKey: "zz"}, fields: []string{"publicKey"}},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking the %s model.", testID, tst.name)
				{
					err := validate.Check(tst.val)
					if len(tst.fields) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould pass validation: %s", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
						return
					}

					if !validate.IsFieldErrors(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
					}

					fields := validate.GetFieldErrors(err).Fields()
					for _, name := range tst.fields {
						if _, exists := fields[name]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould report the %q field: %v", failed, testID, name, fields)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould report the failing fields.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

// internal/config/model_test.go

package config

import "testing"

func TestResolveDSN(t *testing.T) {
	cases := []struct {
		name    string
		db      Database
		want    string
		wantErr bool
	}{
		{
			name: "no password passes DSN through",
			db:   Database{DSN: "app@tcp(db:3306)/platform?parseTime=true"},
			want: "app@tcp(db:3306)/platform?parseTime=true",
		},
		{
			name: "password splices into placeholder",
			db:   Database{DSN: "app:%s@tcp(db:3306)/platform", Password: "s3cret"},
			want: "app:s3cret@tcp(db:3306)/platform",
		},
		{
			name: "literal percent elsewhere survives",
			db:   Database{DSN: "app:%s@unix(/run%2Fmysqld/mysqld.sock)/platform", Password: "pw"},
			want: "app:pw@unix(/run%2Fmysqld/mysqld.sock)/platform",
		},
		{
			name: "percent verbs in the password are not interpreted",
			db:   Database{DSN: "app:%s@tcp(db:3306)/platform", Password: "p%d%s!"},
			want: "app:p%d%s!@tcp(db:3306)/platform",
		},
		{
			name:    "password without placeholder is an error",
			db:      Database{DSN: "app:hardcoded@tcp(db:3306)/platform", Password: "pw"},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.db.ResolveDSN()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ResolveDSN() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDSN(): %v", err)
			}
			if got != tc.want {
				t.Fatalf("ResolveDSN() = %q, want %q", got, tc.want)
			}
		})
	}
}

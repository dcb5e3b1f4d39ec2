package catalog_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/stonebriar/sagerelay/internal/catalog"
)

type fakeGlue struct {
	out *glue.GetTableOutput
	err error
	in  *glue.GetTableInput
}

func (f *fakeGlue) GetTable(_ context.Context, in *glue.GetTableInput, _ ...func(*glue.Options)) (*glue.GetTableOutput, error) {
	f.in = in
	return f.out, f.err
}

func TestTableLocation(t *testing.T) {
	t.Run("resolves the storage location", func(t *testing.T) {
		api := &fakeGlue{out: &glue.GetTableOutput{
			Table: &gluetypes.Table{
				StorageDescriptor: &gluetypes.StorageDescriptor{
					Location: aws.String("s3://data/marketing/"),
				},
			},
		}}
		c := catalog.NewWithAPI(api, slog.New(slog.DiscardHandler))

		location, err := c.TableLocation(context.Background(), "marketing_db", "bank_marketing")
		if err != nil {
			t.Fatalf("TableLocation: %v", err)
		}
		if location != "s3://data/marketing/" {
			t.Errorf("location = %q", location)
		}
		if aws.ToString(api.in.DatabaseName) != "marketing_db" || aws.ToString(api.in.Name) != "bank_marketing" {
			t.Errorf("request = %+v", api.in)
		}
	})

	t.Run("reports tables without a location", func(t *testing.T) {
		api := &fakeGlue{out: &glue.GetTableOutput{Table: &gluetypes.Table{}}}
		c := catalog.NewWithAPI(api, slog.New(slog.DiscardHandler))

		if _, err := c.TableLocation(context.Background(), "marketing_db", "bank_marketing"); !errors.Is(err, catalog.ErrNoLocation) {
			t.Errorf("err = %v, want ErrNoLocation", err)
		}
	})

	t.Run("propagates lookup failures", func(t *testing.T) {
		api := &fakeGlue{err: errors.New("access denied")}
		c := catalog.NewWithAPI(api, slog.New(slog.DiscardHandler))

		if _, err := c.TableLocation(context.Background(), "marketing_db", "bank_marketing"); err == nil {
			t.Fatal("expected an error")
		}
	})
}

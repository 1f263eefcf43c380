package fernanden_test

import (
	"context"
	"errors"
	"fmt"

	fernanden "github.com/fernanden/fernanden.go"
	"github.com/fernanden/fernanden.go/internal/fakestore"
	"github.com/fernanden/fernanden.go/pkg/connection"
	"github.com/fernanden/fernanden.go/pkg/models"
	"github.com/fernanden/fernanden.go/pkg/query"
)

func ExampleDB_ReadWithFallback() {
	store := fakestore.New()
	store.Seed("products",
		models.Row{"id": 1, "order_index": nil},
		models.Row{"id": 2, "order_index": 5},
	)
	// This deployment has no order_index column.
	store.DropColumn("products", "order_index")

	db := fernanden.New(store)
	rows, err := db.ReadWithFallback(context.Background(), query.From("products"),
		query.Ordering{query.Asc("order_index")},
		nil,
	)
	if err != nil {
		panic(err)
	}
	for _, r := range rows {
		fmt.Println(r["id"])
	}
	// Output:
	// 1
	// 2
}

func ExampleEntity_Search() {
	store := fakestore.New()
	store.Seed("blog_posts",
		models.Row{"id": "a", "title": "Brewing at home", "status": "published"},
		models.Row{"id": "b", "title": "Linen care", "excerpt": "How to wash linen", "status": "published"},
	)

	posts, err := fernanden.New(store).Entity(fernanden.DefaultCatalog().MustGet("blog_posts"))
	if err != nil {
		panic(err)
	}
	rows, err := posts.Search(context.Background(), "LINEN")
	if err != nil {
		panic(err)
	}
	for _, r := range rows {
		fmt.Println(r["title"])
	}
	// Output:
	// Linen care
}

func ExampleDB_ToggleField() {
	store := fakestore.New()
	store.Seed("products", models.Row{"id": "p1", "featured": false})
	db := fernanden.New(store)

	row, _ := db.ToggleField(context.Background(), "products", "p1", "featured")
	fmt.Println(row["featured"])

	_, err := db.ToggleField(context.Background(), "products", "p2", "featured")
	var nf *fernanden.NotFoundError
	fmt.Println(errors.As(err, &nf))
	// Output:
	// true
	// true
}

func ExampleQueryFailure() {
	store := fakestore.New()
	store.CreateTable("podcasts")
	store.Fail(fakestore.Failure{
		Method: "select",
		Err:    connection.NewError(connection.KindSchema, "42P01", `relation "podcasts" does not exist`, nil),
	})

	_, err := fernanden.New(store).ReadWithFallback(context.Background(), query.From("podcasts"))
	var failure *fernanden.QueryFailure
	if errors.As(err, &failure) {
		fmt.Println(failure.Attempts)
	}
	var schema *fernanden.SchemaError
	fmt.Println(errors.As(err, &schema))
	// Output:
	// 1
	// true
}

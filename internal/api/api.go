package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/booknestapp/booknest-server/internal/auth"
	"github.com/booknestapp/booknest-server/internal/config"
	"github.com/booknestapp/booknest-server/internal/logger"
	"github.com/booknestapp/booknest-server/internal/openlibrary"
	"github.com/booknestapp/booknest-server/internal/store"
)

var validate = validator.New()

// catalogClient is the slice of the OpenLibrary client the handlers use.
type catalogClient interface {
	Search(ctx context.Context, q string, limit, page int) (*openlibrary.SearchData, error)
}

type Api struct {
	router   *chi.Mux
	logger   logger.Logger
	store    store.Store
	catalog  catalogClient
	verifier auth.Verifier
	config   *config.Config
}

func New(
	router *chi.Mux,
	logger logger.Logger,
	store store.Store,
	catalog catalogClient,
	verifier auth.Verifier,
	config *config.Config,
) *Api {
	return &Api{
		router:   router,
		logger:   logger,
		store:    store,
		catalog:  catalog,
		verifier: verifier,
		config:   config,
	}
}

func (a *Api) RegisterRoutes() {
	a.router.Group(func(r chi.Router) {
		r.Use(a.LoggingMiddleware)

		r.Post("/book_router/search", a.HandleSearchBooks)
		r.Get("/openlibrary/search", a.HandleOpenLibrarySearch)

		r.Route("/reviews", func(r chi.Router) {
			r.With(a.RequireUser).Post("/create", a.HandleCreateReview)
			r.Post("/for_book", a.HandleBookReviews)
		})

		r.Route("/collections", func(r chi.Router) {
			r.With(a.RequireUser).Post("/create_collection", a.HandleCreateCollection)
			r.With(a.OptionalUser).Get("/get_collections", a.HandleGetCollections)
			r.Get("/get_collection_books/{collectionId}", a.HandleGetCollectionBooks)
			r.Post("/search_collections", a.HandleSearchCollections)
			r.With(a.RequireUser).Post("/add_book", a.HandleAddBookToCollection)
			r.With(a.RequireUser).Delete("/{collectionId}/books/{bookId}", a.HandleRemoveBookFromCollection)
			r.With(a.RequireUser).Patch("/{collectionId}/books/{bookId}/position", a.HandleUpdateBookPosition)
		})

		r.Route("/user_books", func(r chi.Router) {
			r.Use(a.RequireUser)
			r.Post("/add", a.HandleAddUserBook)
			r.Get("/my_books", a.HandleMyBooks)
			r.Delete("/remove/{bookId}", a.HandleRemoveUserBook)
		})
	})
}

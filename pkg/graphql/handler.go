package graphql

import (
	"errors"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/shashiranjanraj/medcart/config"
	"github.com/shashiranjanraj/medcart/pkg/apperr"
	"github.com/shashiranjanraj/medcart/pkg/bind"
	"github.com/shashiranjanraj/medcart/pkg/logger"
	"github.com/shashiranjanraj/medcart/pkg/response"
)

// Request is the standard GraphQL-over-HTTP POST body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves POST /graphql. Results use the GraphQL response format
// rather than the REST envelope.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := bind.Decode(r, &req); err != nil {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Query == "" {
			response.Error(w, http.StatusBadRequest, "The query field is required.")
			return
		}

		res := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        r.Context(),
		})
		for i, e := range res.Errors {
			res.Errors[i] = clientError(r, e)
		}

		response.JSON(w, http.StatusOK, res)
	}
}

// clientError hides internal failures the same way the REST handlers do.
func clientError(r *http.Request, e gqlerrors.FormattedError) gqlerrors.FormattedError {
	cause := e.OriginalError()
	var gerr *gqlerrors.Error
	if errors.As(cause, &gerr) && gerr.OriginalError != nil {
		cause = gerr.OriginalError
	}
	var ae *apperr.Error
	if !errors.As(cause, &ae) {
		return e
	}
	if ae.Kind == apperr.KindInternal {
		logger.WithCtx(r.Context()).Error("graphql resolver failed", "error", ae)
	}
	e.Message = apperr.Message(ae, !config.IsProduction())
	return e
}

package controllers

import (
	"net/http"

	gql "github.com/graphql-go/graphql"

	"github.com/afandal/storeadmin/app/graph"
	"github.com/afandal/storeadmin/pkg/ctx"
	kgraphql "github.com/afandal/storeadmin/pkg/graphql"
)

type GraphQLController struct {
	handler http.HandlerFunc
}

func NewGraphQLController(schema gql.Schema) *GraphQLController {
	return &GraphQLController{handler: kgraphql.Handler(schema, nil)}
}

// Query runs a read-only query with the request's credential.
func (ctl *GraphQLController) Query(c *ctx.Context) {
	r := c.R.WithContext(graph.WithSession(c.Context(), Credential(c)))
	ctl.handler(c.W, r)
}

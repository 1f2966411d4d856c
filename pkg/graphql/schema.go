// Package graphql exposes a read-only GraphQL view over the medcart
// services at POST /graphql.
package graphql

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/medcart/app/models"
)

// Source is the read side of the services the resolvers call.
type Source interface {
	Products(ctx context.Context, pharmacy string) ([]models.Product, error)
	Purchase(ctx context.Context, id string) (models.Purchase, error)
	PurchasesByPharmacy(ctx context.Context, name string) ([]models.Purchase, error)
	PrescriptionsByPharmacy(ctx context.Context, name string) ([]models.Prescription, error)
	Pharmacies(ctx context.Context) ([]models.PharmacySummary, error)
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":        {Type: graphql.NewNonNull(graphql.ID)},
		"name":      {Type: graphql.String},
		"price":     {Type: graphql.Float},
		"image":     {Type: graphql.String},
		"stock":     {Type: graphql.Int},
		"pharmacy":  {Type: graphql.String},
		"createdAt": {Type: graphql.DateTime},
		"updatedAt": {Type: graphql.DateTime},
	},
})

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PurchaseItem",
	Fields: graphql.Fields{
		"id":       {Type: graphql.ID},
		"name":     {Type: graphql.String},
		"price":    {Type: graphql.Float},
		"quantity": {Type: graphql.Int},
		"image":    {Type: graphql.String},
	},
})

var addressType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Address",
	Fields: graphql.Fields{
		"street":     {Type: graphql.String},
		"city":       {Type: graphql.String},
		"state":      {Type: graphql.String},
		"postalCode": {Type: graphql.String},
		"country":    {Type: graphql.String},
	},
})

var purchaseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Purchase",
	Fields: graphql.Fields{
		"id":              {Type: graphql.NewNonNull(graphql.ID)},
		"customerEmail":   {Type: graphql.String},
		"customerName":    {Type: graphql.String},
		"customerPhone":   {Type: graphql.String},
		"pharmacy":        {Type: graphql.String},
		"products":        {Type: graphql.NewList(itemType)},
		"totalAmount":     {Type: graphql.Float},
		"shippingAddress": {Type: addressType},
		"status":          {Type: graphql.String},
		"createdAt":       {Type: graphql.DateTime},
		"updatedAt":       {Type: graphql.DateTime},
	},
})

var prescriptionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Prescription",
	Fields: graphql.Fields{
		"id":            {Type: graphql.NewNonNull(graphql.ID)},
		"pharmacy":      {Type: graphql.String},
		"customerEmail": {Type: graphql.String},
		"customerName":  {Type: graphql.String},
		"file":          {Type: graphql.String},
		"fileUrl":       {Type: graphql.String},
		"status":        {Type: graphql.String},
		"createdAt":     {Type: graphql.DateTime},
		"updatedAt":     {Type: graphql.DateTime},
	},
})

var pharmacyType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Pharmacy",
	Fields: graphql.Fields{
		"id":      {Type: graphql.NewNonNull(graphql.ID)},
		"name":    {Type: graphql.String},
		"email":   {Type: graphql.String},
		"address": {Type: graphql.String},
		"phone":   {Type: graphql.String},
	},
})

// NewSchema builds the query schema over src.
func NewSchema(src Source) (graphql.Schema, error) {
	str := func(p graphql.ResolveParams, name string) string {
		s, _ := p.Args[name].(string)
		return s
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": {
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"pharmacy": {Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.Products(p.Context, str(p, "pharmacy"))
				},
			},
			"purchase": {
				Type: purchaseType,
				Args: graphql.FieldConfigArgument{
					"id": {Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.Purchase(p.Context, str(p, "id"))
				},
			},
			"purchasesByPharmacy": {
				Type: graphql.NewList(purchaseType),
				Args: graphql.FieldConfigArgument{
					"name": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.PurchasesByPharmacy(p.Context, str(p, "name"))
				},
			},
			"prescriptionsByPharmacy": {
				Type: graphql.NewList(prescriptionType),
				Args: graphql.FieldConfigArgument{
					"name": {Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.PrescriptionsByPharmacy(p.Context, str(p, "name"))
				},
			},
			"pharmacies": {
				Type: graphql.NewList(pharmacyType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return src.Pharmacies(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query})
}

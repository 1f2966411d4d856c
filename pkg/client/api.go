package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/shashiranjanraj/medcart/app/models"
	"github.com/shashiranjanraj/medcart/app/services"
)

func (cl *Client) Register(ctx context.Context, in services.RegisterInput) (models.User, error) {
	var u models.User
	_, err := cl.do(ctx, call{method: http.MethodPost, path: "/api/auth/register", body: in}, &u)
	return u, err
}

// Login exchanges credentials for a Session.
func (cl *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var res services.LoginResult
	in := services.LoginInput{Email: email, Password: password}
	if _, err := cl.do(ctx, call{method: http.MethodPost, path: "/api/auth/login", body: in}, &res); err != nil {
		return Session{}, err
	}
	return Session{Token: res.Token, User: res.User}, nil
}

func (cl *Client) Me(ctx context.Context, s Session) (models.User, error) {
	var u models.User
	_, err := cl.do(ctx, call{method: http.MethodGet, path: "/api/auth/me", token: s.Token}, &u)
	return u, err
}

func (cl *Client) Pharmacies(ctx context.Context) ([]models.PharmacySummary, error) {
	var out []models.PharmacySummary
	_, err := cl.do(ctx, call{method: http.MethodGet, path: "/api/auth/pharmacy"}, &out)
	return out, err
}

// Products lists products, all of them when pharmacy is empty.
func (cl *Client) Products(ctx context.Context, pharmacy string) ([]models.Product, error) {
	path := "/api/products"
	if pharmacy != "" {
		path += "?pharmacy=" + url.QueryEscape(pharmacy)
	}
	var out []models.Product
	_, err := cl.do(ctx, call{method: http.MethodGet, path: path}, &out)
	return out, err
}

func (cl *Client) CreateProduct(ctx context.Context, s Session, in services.CreateProductInput) (models.Product, error) {
	var p models.Product
	_, err := cl.do(ctx, call{method: http.MethodPost, path: "/api/products", token: s.Token, body: in}, &p)
	return p, err
}

// Buy takes one unit of stock and returns how many are left.
func (cl *Client) Buy(ctx context.Context, productID string) (int, error) {
	var res services.BuyResult
	_, err := cl.do(ctx, call{method: http.MethodPost, path: "/api/products/" + url.PathEscape(productID) + "/buy"}, &res)
	return res.RemainingStock, err
}

func (cl *Client) CreatePurchase(ctx context.Context, in services.PurchaseInput) (models.Purchase, error) {
	var p models.Purchase
	_, err := cl.do(ctx, call{method: http.MethodPost, path: "/api/purchases", body: in}, &p)
	return p, err
}

func (cl *Client) PurchasesByPharmacy(ctx context.Context, s Session, pharmacy string) ([]models.Purchase, error) {
	var out []models.Purchase
	_, err := cl.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/purchases/pharmacy/" + url.PathEscape(pharmacy),
		token:  s.Token,
	}, &out)
	return out, err
}

func (cl *Client) UpdatePurchaseStatus(ctx context.Context, s Session, id string, status models.PurchaseStatus) (models.Purchase, error) {
	var p models.Purchase
	_, err := cl.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/purchases/" + url.PathEscape(id) + "/status",
		token:  s.Token,
		body:   map[string]models.PurchaseStatus{"status": status},
	}, &p)
	return p, err
}

// Prescription is an upload request. File is read fully before sending.
type Prescription struct {
	Pharmacy      string
	CustomerEmail string
	CustomerName  string
	Filename      string
	File          io.Reader
}

func (cl *Client) UploadPrescription(ctx context.Context, in Prescription) (models.Prescription, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"pharmacy", in.Pharmacy},
		{"customerEmail", in.CustomerEmail},
		{"customerName", in.CustomerName},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return models.Prescription{}, err
		}
	}
	if in.File != nil {
		name := in.Filename
		if name == "" {
			name = "prescription"
		}
		part, err := mw.CreateFormFile("prescription", name)
		if err != nil {
			return models.Prescription{}, err
		}
		if _, err := io.Copy(part, in.File); err != nil {
			return models.Prescription{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return models.Prescription{}, err
	}

	var p models.Prescription
	_, err := cl.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/prescriptions",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &p)
	return p, err
}

func (cl *Client) PrescriptionsByPharmacy(ctx context.Context, s Session, pharmacy string) ([]models.Prescription, error) {
	var out []models.Prescription
	_, err := cl.do(ctx, call{
		method: http.MethodGet,
		path:   "/api/prescriptions/pharmacy/" + url.PathEscape(pharmacy),
		token:  s.Token,
	}, &out)
	return out, err
}

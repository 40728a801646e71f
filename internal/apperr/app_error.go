package apperr

import (
	"fmt"

	"github.com/lmdl25/kenility-challenge/pkg/zerror"
)

const (
	ValidationErrorCode = "VALIDATION_FAILED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	Unauthenticated = zerror.NewUnauthorized("UNAUTHORIZED", "invalid or missing credentials")
)

// Product errors.

func NewInvalidProductID(id string) zerror.ZError {
	return zerror.NewBadRequest("INVALID_PRODUCT_ID",
		fmt.Sprintf("invalid product ID format: %q", id))
}

func NewProductNotFound(id string) zerror.ZError {
	return zerror.NewNotFound("PRODUCT_NOT_FOUND",
		fmt.Sprintf("product with ID %q not found", id))
}

func NewSkuConflict(sku string) zerror.ZError {
	return zerror.NewConflict("SKU_CONFLICT",
		fmt.Sprintf("product with SKU %q already exists", sku))
}

func NewProductPriceCorrupt(id string) zerror.ZError {
	return zerror.NewInternalServerError("PRODUCT_PRICE_CORRUPT",
		fmt.Sprintf("could not determine price for product %q", id))
}

var (
	ProductCreateFailed = zerror.NewInternalServerError("PRODUCT_CREATE_FAILED",
		"failed to create product due to a database error")
	ProductFetchFailed = zerror.NewInternalServerError("PRODUCT_FETCH_FAILED",
		"an error occurred while fetching the product")
	ProductUpdateFailed = zerror.NewInternalServerError("PRODUCT_UPDATE_FAILED",
		"failed to update product due to a database error")
	ImageUploadFailed = zerror.NewInternalServerError("IMAGE_UPLOAD_FAILED",
		"failed to upload product image")
	ImageFileMissing = zerror.NewBadRequest("IMAGE_FILE_MISSING",
		"multipart field \"file\" is required")
)

func NewUnsupportedImageType(ext string) zerror.ZError {
	return zerror.NewBadRequest("UNSUPPORTED_IMAGE_TYPE",
		fmt.Sprintf("unsupported image extension %q", ext))
}

// Order errors.

var (
	OrderProductListEmpty = zerror.NewBadRequest("ORDER_PRODUCT_LIST_EMPTY",
		"order product list cannot be empty")
	OrderNoFieldsToUpdate = zerror.NewBadRequest("ORDER_NO_FIELDS_TO_UPDATE",
		"no valid fields provided for update")
	OrderCreateFailed = zerror.NewInternalServerError("ORDER_CREATE_FAILED",
		"failed to create order due to a database error")
	OrderUpdateFailed = zerror.NewInternalServerError("ORDER_UPDATE_FAILED",
		"failed to update order due to a database error")
	OrderStatsFailed = zerror.NewInternalServerError("ORDER_STATS_FAILED",
		"failed to calculate order statistics")
	NoOrdersFound = zerror.NewNotFound("NO_ORDERS_FOUND",
		"no orders found to determine the highest amount")
)

func NewInvalidOrderID(id string) zerror.ZError {
	return zerror.NewBadRequest("INVALID_ORDER_ID",
		fmt.Sprintf("invalid order ID format: %q", id))
}

func NewOrderNotFound(id string) zerror.ZError {
	return zerror.NewNotFound("ORDER_NOT_FOUND",
		fmt.Sprintf("order with ID %q not found", id))
}

func NewOrderUpdateInvalid(reason string) zerror.ZError {
	return zerror.NewBadRequest("ORDER_UPDATE_INVALID",
		fmt.Sprintf("invalid data provided for update: %s", reason))
}

// User errors.

var (
	// UsernameTaken is reported as a bad request, not a conflict.
	UsernameTaken = zerror.NewBadRequest("USERNAME_TAKEN",
		"this username is already registered")
	InvalidCredentials = zerror.NewUnauthorized("INVALID_CREDENTIALS",
		"invalid username or password")
	UserCreateFailed = zerror.NewInternalServerError("USER_CREATE_FAILED",
		"failed to create user due to a database error")
	LoginFailed = zerror.NewInternalServerError("LOGIN_FAILED",
		"failed to log in due to an internal error")
)

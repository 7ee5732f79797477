package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/farmops-platform/block-service/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func registerCustomValidators(v *validator.Validate) {
	_ = v.RegisterValidation("block_id", validateBlockID)
	_ = v.RegisterValidation("farm_id", validateFarmID)
	_ = v.RegisterValidation("template_id", validateTemplateID)
	_ = v.RegisterValidation("plant_type_id", validatePlantTypeID)
	_ = v.RegisterValidation("growth_stage", validateGrowthStage)
	_ = v.RegisterValidation("task_category", validateTaskCategory)
	_ = v.RegisterValidation("task_priority", validateTaskPriority)
	_ = v.RegisterValidation("safe_string", validateSafeString)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustomValidators(validate)

		// Register the same validators on Gin's binding validator
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidators(v)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

// Custom validators

var (
	blockIDRegex     = regexp.MustCompile(`^BLK-[a-zA-Z0-9]{3,}$`)
	farmIDRegex      = regexp.MustCompile(`^FARM-[a-zA-Z0-9]{3,}$`)
	templateIDRegex  = regexp.MustCompile(`^TPL-[a-zA-Z0-9]{3,}$`)
	plantTypeIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_]{1,49}$`)
	safeStringRegex  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?@#$%&*()+=:;'"\/\[\]{}|~]+$`)
)

func validateBlockID(fl validator.FieldLevel) bool {
	return blockIDRegex.MatchString(fl.Field().String())
}

func validateFarmID(fl validator.FieldLevel) bool {
	return farmIDRegex.MatchString(fl.Field().String())
}

func validateTemplateID(fl validator.FieldLevel) bool {
	return templateIDRegex.MatchString(fl.Field().String())
}

func validatePlantTypeID(fl validator.FieldLevel) bool {
	return plantTypeIDRegex.MatchString(fl.Field().String())
}

func validateGrowthStage(fl validator.FieldLevel) bool {
	validStages := map[string]bool{
		"seedling":   true,
		"vegetative": true,
		"flowering":  true,
		"fruiting":   true,
		"harvest":    true,
	}
	return validStages[fl.Field().String()]
}

func validateTaskCategory(fl validator.FieldLevel) bool {
	validCategories := map[string]bool{
		"irrigation":   true,
		"fertilizing":  true,
		"pest_control": true,
		"pruning":      true,
		"harvesting":   true,
		"maintenance":  true,
		"inspection":   true,
	}
	return validCategories[fl.Field().String()]
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	validPriorities := map[string]bool{
		"urgent": true,
		"high":   true,
		"medium": true,
		"low":    true,
	}
	return validPriorities[fl.Field().String()]
}

func validateSafeString(fl validator.FieldLevel) bool {
	return safeStringRegex.MatchString(fl.Field().String())
}

// ValidationErrorFormatter formats validation errors into a map
func ValidationErrorFormatter(err error) map[string]string {
	fields := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			fields[e.Field()] = formatValidationError(e)
		}
	}

	return fields
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "block_id":
		return "must be a valid block ID (format: BLK-xxx)"
	case "farm_id":
		return "must be a valid farm ID (format: FARM-xxx)"
	case "template_id":
		return "must be a valid template ID (format: TPL-xxx)"
	case "plant_type_id":
		return "must be a valid plant type identifier"
	case "growth_stage":
		return "must be one of: seedling, vegetative, flowering, fruiting, harvest"
	case "task_category":
		return "must be a valid task category"
	case "task_priority":
		return "must be one of: urgent, high, medium, low"
	case "safe_string":
		return "contains invalid characters"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

// BindAndValidate binds request body and validates it
func BindAndValidate(c *gin.Context, obj interface{}) *errors.AppError {
	if err := c.ShouldBindJSON(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := ValidationErrorFormatter(validationErrors)
			return errors.ErrValidationWithFields("validation failed", fields)
		}
		return errors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

// ValidateStruct validates a struct using the validator
func ValidateStruct(obj interface{}) *errors.AppError {
	v := GetValidator()
	if err := v.Struct(obj); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			fields := ValidationErrorFormatter(validationErrors)
			return errors.ErrValidationWithFields("validation failed", fields)
		}
		return errors.ErrBadRequest("validation failed: " + err.Error())
	}
	return nil
}

// SanitizeString removes null bytes and trims whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}

// InputSanitizer middleware sanitizes query string inputs
func InputSanitizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Request.URL.Query()
		for key, values := range query {
			for i, v := range values {
				values[i] = SanitizeString(v)
			}
			query[key] = values
		}
		c.Request.URL.RawQuery = query.Encode()

		c.Next()
	}
}

// ContentType middleware ensures proper content type for POST/PUT/PATCH
func ContentType() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "PATCH" {
			contentType := c.GetHeader("Content-Type")
			if contentType == "" || !strings.HasPrefix(contentType, "application/json") {
				if c.Request.ContentLength > 0 {
					AbortWithAppError(c, &errors.AppError{
						Code:       "INVALID_CONTENT_TYPE",
						Message:    "Content-Type must be application/json",
						HTTPStatus: 415,
					})
					return
				}
			}
		}

		c.Next()
	}
}

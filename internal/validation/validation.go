package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	weekdayTag  = "weekday"
	weekdayText = "{0} must be one of Mon, Tue, Wed, Thu, Fri, Sat"

	hhmmTag   = "hhmm"
	hhmmText  = "{0} must be a 24h time like 09:30"
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	isoDateTag  = "isodate"
	isoDateText = "{0} must be a date like 2024-01-31"

	activityTypeTag  = "activitytype"
	activityTypeText = "{0} is not a supported activity type"

	academicYearTag   = "academicyear"
	academicYearText  = "{0} must look like 2023-24"
	academicYearRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

	requiredText = "{0} is required"
)

// Weekdays are the teaching days a timetable slot may use.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// ActivityTypes are the kinds of record a student may submit for approval.
var ActivityTypes = []string{
	"resume", "result", "seminar", "conference", "online_course",
	"abc_id", "internship", "extracurricular", "certificate",
}

var (
	once       sync.Once
	translator ut.Translator
	setupErr   error
)

// Setup registers the custom tags and english translations on gin's validator engine.
// It is safe to call more than once.
func Setup() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")
		setupErr = Register(v, translator)
	})
	return setupErr
}

// Register installs the custom validators and their messages on validate.
func Register(validate *validator.Validate, trans ut.Translator) error {
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return err
	}

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	custom := []struct {
		tag  string
		text string
		fn   validator.Func
	}{
		{weekdayTag, weekdayText, func(fl validator.FieldLevel) bool { return IsWeekday(fl.Field().String()) }},
		{hhmmTag, hhmmText, func(fl validator.FieldLevel) bool { return IsHHMM(fl.Field().String()) }},
		{isoDateTag, isoDateText, func(fl validator.FieldLevel) bool { return IsISODate(fl.Field().String()) }},
		{activityTypeTag, activityTypeText, func(fl validator.FieldLevel) bool { return IsActivityType(fl.Field().String()) }},
		{academicYearTag, academicYearText, func(fl validator.FieldLevel) bool { return IsAcademicYear(fl.Field().String()) }},
	}
	for _, c := range custom {
		if err := validate.RegisterValidation(c.tag, c.fn); err != nil {
			return err
		}
		registerTranslation(validate, trans, c.tag, c.text, false)
	}
	registerTranslation(validate, trans, "required", requiredText, true)
	return nil
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, text string, override bool) {
	_ = validate.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Messages flattens validation errors into field -> message. It returns nil when err
// is not a validation error.
func Messages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if translator != nil {
			out[fe.Field()] = fe.Translate(translator)
		} else {
			out[fe.Field()] = fe.Error()
		}
	}
	return out
}

func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if s == d {
			return true
		}
	}
	return false
}

func IsHHMM(s string) bool { return hhmmRegex.MatchString(s) }

func IsISODate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func IsActivityType(s string) bool {
	for _, t := range ActivityTypes {
		if s == t {
			return true
		}
	}
	return false
}

// IsAcademicYear accepts spans like 2023-24 where the second year follows the first.
func IsAcademicYear(s string) bool {
	if !academicYearRegex.MatchString(s) {
		return false
	}
	first, _ := strconv.Atoi(s[:4])
	second, _ := strconv.Atoi(s[5:])
	return (first+1)%100 == second
}

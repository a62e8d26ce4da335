package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans 参数校验错误的英文翻译器，InitTrans 之前为 nil
var trans ut.Translator

// InitTrans 让 gin 的 validator 使用 json 字段名并注册英文错误信息
func InitTrans() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}

	// 错误信息里用 json 名（如 refreshToken）而不是结构体字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enT := en.New()
	t, _ := ut.New(enT, enT).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, t); err != nil {
		return err
	}
	trans = t
	return nil
}

// translateErrors 字段 => 错误信息，字段名去掉顶层结构体前缀
// 如 "RegisterRequest.email" => "email"
func translateErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, msg := range errs.Translate(trans) {
		out[field[strings.Index(field, ".")+1:]] = msg
	}
	return out
}

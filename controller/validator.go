package controller

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"teacreek/models"
	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// 定义全局翻译器
var trans ut.Translator

// InitTrans 初始化翻译器
// locale 参数指定需要初始化的语言，例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {
	// 在 Gin v1.9+ 中 binding.Validator 可能为 nil，需要先初始化
	if binding.Validator == nil {
		binding.Validator = &defaultValidator{validator: validator.New()}
	}

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	// 报错信息使用 json tag 作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("json")
		if tag == "" {
			tag = fld.Tag.Get("form")
		}
		name := strings.SplitN(tag, ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	zhT := zh.New()
	enT := en.New()
	// 第一个参数是备用（fallback）的语言环境
	uni := ut.New(enT, zhT, enT)

	trans, ok = uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, trans)
	default:
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return err
	}

	// 只包含空白字符的标题、评论视为未填写
	v.RegisterStructValidation(SubmitParamStructLevelValidation, models.ParamSubmit{})
	v.RegisterStructValidation(CommentParamStructLevelValidation, models.ParamComment{})
	v.RegisterStructValidation(CommentWithPostParamStructLevelValidation, models.ParamCommentWithPost{})
	return nil
}

// removeTopStruct 去除提示信息中的结构体名称，"ParamSubmit.title" -> "title"
func removeTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}

// bindFailed 处理 ShouldBind 系列方法返回的错误
func bindFailed(c *gin.Context, err error) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		// JSON 格式错误、类型不匹配等
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}
	ResponseValidationError(c, removeTopStruct(errs.Translate(trans)))
}

func SubmitParamStructLevelValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.ParamSubmit)
	if strings.TrimSpace(p.Title) == "" {
		sl.ReportError(p.Title, "title", "Title", "required", "")
	}
	if strings.TrimSpace(p.Department) == "" {
		sl.ReportError(p.Department, "department", "Department", "required", "")
	}
}

func CommentParamStructLevelValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.ParamComment)
	if strings.TrimSpace(p.Content) == "" {
		sl.ReportError(p.Content, "content", "Content", "required", "")
	}
}

func CommentWithPostParamStructLevelValidation(sl validator.StructLevel) {
	p := sl.Current().Interface().(models.ParamCommentWithPost)
	if strings.TrimSpace(p.Content) == "" {
		sl.ReportError(p.Content, "content", "Content", "required", "")
	}
}

// defaultValidator 实现了 binding.StructValidator 接口
// 用于在 Gin v1.9+ 中初始化 binding.Validator
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() interface{} {
	return v.validator
}

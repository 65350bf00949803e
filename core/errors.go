package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 推荐计算错误：INVALID_INPUT, COMPUTE_FAILED
//   - 其他领域错误
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "recall", "rank"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(*DomainError)
	return ok
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeComputeFailed = "COMPUTE_FAILED" // 上游读取失败导致计算失败
)

// 模块名称常量
const (
	ModuleStore  = "store"  // 存储模块
	ModuleRecall = "recall" // 召回模块
	ModuleRank   = "rank"   // 融合排序模块
	ModuleCache  = "cache"  // 结果缓存模块
	ModuleEngine = "engine" // 推荐引擎入口
)

// IsNotFound 检查错误是否为资源不存在
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为输入无效
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}

// IsComputeFailed 检查错误是否为计算失败（上游事件流/商品目录读取出错）
func IsComputeFailed(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeComputeFailed
	}
	return false
}

// ComputeFailed 将上游错误包装为 COMPUTE_FAILED 领域错误。
// 推荐计算过程中事件流或目录读取失败时使用：这类错误必须上抛，
// 否则返回的结果会"看似成功实则残缺"。
func ComputeFailed(module string, err error) *DomainError {
	msg := "compute failed"
	if err != nil {
		msg = "compute failed: " + err.Error()
	}
	return NewDomainError(module, ErrorCodeComputeFailed, msg)
}

package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/shoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable("item", cel.DynType),
		cel.Variable("product", cel.DynType),
		cel.Variable("label", cel.DynType),
		cel.Variable("rctx", cel.DynType),
	)
	return env, err
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	var err error
	celEnvOnce.Do(func() {
		celEnv, err = initCELEnv()
	})
	return celEnv, err
}

// Eval 是运营规则的解释器，使用 CEL (Common Expression Language) 实现。
// 用于在推荐结果上执行可配置的剔除规则（例如无库存商品不出推荐位）。
//
// 表达式语法（CEL 标准语法）：
//   - 商品属性：product.stock == 0 / product.price > 999.0
//   - 分数：item.score < 0.5
//   - 标签：label.recall_source == "popular"
//   - 逻辑：product.category == "clearance" && item.score < 2.0
//
// 示例：
//   - `product.stock == 0` → 无库存商品
//   - `product.brand == "acme" && rctx.user_id == ""` → 未登录用户不推某品牌
type Eval struct {
	item    *core.Item
	product *core.Product
	rctx    *core.RecommendContext
	env     *cel.Env
}

// NewEval 创建一个新的规则解释器。product 可为 nil（目录缺失时按空对象求值）。
func NewEval(item *core.Item, product *core.Product, rctx *core.RecommendContext) *Eval {
	env, _ := getCELEnv()
	return &Eval{
		item:    item,
		product: product,
		rctx:    rctx,
		env:     env,
	}
}

// Evaluate 解析并执行规则表达式，返回布尔结果。
// 空表达式视为 true（不做限制）。
//
// 注意：CEL 访问不存在的 key 会报错，存在性检查应写 label.key != null。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}

	if e.env == nil {
		return false, fmt.Errorf("cel env not initialized")
	}

	// 编译表达式
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("compile error: %v", issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %v", err)
	}

	out, _, err := prg.Eval(e.buildInput())
	if err != nil {
		return false, fmt.Errorf("eval error: %v", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}

	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func (e *Eval) buildInput() map[string]interface{} {
	labels := make(map[string]interface{})
	item := map[string]interface{}{}
	if e.item != nil {
		for k, v := range e.item.Labels {
			labels[k] = v.Value
		}
		item = map[string]interface{}{
			"id":     e.item.ID,
			"score":  e.item.Score,
			"reason": e.item.Reason,
		}
	}

	product := map[string]interface{}{}
	if e.product != nil {
		tags := make([]interface{}, 0, len(e.product.Tags))
		for _, t := range e.product.Tags {
			tags = append(tags, t)
		}
		product = map[string]interface{}{
			"id":       e.product.ID,
			"name":     e.product.Name,
			"price":    e.product.Price,
			"category": e.product.Category,
			"brand":    e.product.Brand,
			"tags":     tags,
			"stock":    e.product.Stock,
			"rating":   e.product.Rating,
		}
	}

	rctx := map[string]interface{}{}
	if e.rctx != nil {
		rctx = map[string]interface{}{
			"user_id":    e.rctx.UserID,
			"product_id": e.rctx.ProductID,
		}
	}

	return map[string]interface{}{
		"item":    item,
		"product": product,
		"label":   labels,
		"rctx":    rctx,
	}
}

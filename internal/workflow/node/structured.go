package node

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyInput 输入为空或仅含空白字符
var ErrEmptyInput = fmt.Errorf("empty llm output")

// DecodeStrict 严格解码 JSON，拒绝未知字段
func DecodeStrict[T any](raw string) (*T, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var v T
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DecodeLenient 分级解码模型输出，每级仅在前一级失败时尝试：
//  1. 对原始文本严格解码；
//  2. 截取第一个完整 JSON 值后再严格解码；
//  3. 按字段白名单剥离多余字段后重新解码，剥离动作记入诊断。
//
// 返回的诊断序列按修复发生顺序排列，干净解析时为空。
// 全部失败时返回错误，由调用方决定是否降级构造。
func DecodeLenient[T any](raw string, allowed []string) (*T, []string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyInput
	}

	// 1. 原样严格解码
	if v, err := DecodeStrict[T](raw); err == nil {
		return v, nil, nil
	}

	var diagnostics []string

	// 2. 截取 JSON 值
	extracted := ExtractJSONObject(raw)
	if extracted != raw {
		diagnostics = append(diagnostics, "extracted_json_from_surrounding_text")
	}
	if v, err := DecodeStrict[T](extracted); err == nil {
		return v, diagnostics, nil
	}

	// 3. 白名单剥离
	stripped, strippedFields, err := stripUnknownFields(extracted, allowed)
	if err != nil {
		return nil, diagnostics, fmt.Errorf("decode llm output: %w", err)
	}
	if len(strippedFields) > 0 {
		diagnostics = append(diagnostics,
			fmt.Sprintf("stripped_extra_fields: %s", strings.Join(strippedFields, ", ")))
	}
	v, err := DecodeStrict[T](stripped)
	if err != nil {
		return nil, diagnostics, fmt.Errorf("decode llm output: %w", err)
	}
	return v, diagnostics, nil
}

// stripUnknownFields 删除顶层对象中不在白名单内的字段，返回剥离后的 JSON
// 和被剥离字段名（按字典序）
func stripUnknownFields(raw string, allowed []string) (string, []string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", nil, err
	}

	allowSet := make(map[string]struct{}, len(allowed))
	for _, f := range allowed {
		allowSet[f] = struct{}{}
	}

	var stripped []string
	for key := range obj {
		if _, ok := allowSet[key]; !ok {
			stripped = append(stripped, key)
			delete(obj, key)
		}
	}
	sort.Strings(stripped)

	out, err := json.Marshal(obj)
	if err != nil {
		return "", nil, err
	}
	return string(out), stripped, nil
}

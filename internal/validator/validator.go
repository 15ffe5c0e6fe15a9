// Package validator checks surface modules for structural problems before
// they reach lowering. It only validates shape; whether a construct is inside
// the compilable subset is decided by the lowering pass.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/LanceMoe/gojiting/internal/ast"
)

// Validator validates surface AST structures.
type Validator struct {
	errors []string
}

// New creates a new validator.
func New() *Validator {
	return &Validator{
		errors: make([]string, 0),
	}
}

// ValidateModule validates a complete module.
func (v *Validator) ValidateModule(m *ast.Module) error {
	v.errors = make([]string, 0)

	if m.Type != ast.ModuleType {
		v.addError("module type must be '%s', got '%s'", ast.ModuleType, m.Type)
	}
	if m.Name == "" {
		v.addError("module name cannot be empty")
	}
	if len(m.Functions) == 0 {
		v.addError("module must contain at least one function")
	}

	functionNames := make(map[string]bool)
	for i := range m.Functions {
		fn := &m.Functions[i]
		if err := v.validateFunction(fn); err != nil {
			v.addError("function %d: %v", i, err)
		}
		if functionNames[fn.Name] {
			v.addError("duplicate function name: %s", fn.Name)
		}
		functionNames[fn.Name] = true
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

// ValidateFunction validates a single function definition.
func (v *Validator) ValidateFunction(fn *ast.Function) error {
	v.errors = make([]string, 0)
	if err := v.validateFunction(fn); err != nil {
		return err
	}
	return nil
}

func (v *Validator) validateFunction(fn *ast.Function) error {
	if fn.Type != ast.FunctionType {
		return fmt.Errorf("type must be '%s', got '%s'", ast.FunctionType, fn.Type)
	}
	if fn.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !isValidIdentifier(fn.Name) {
		return fmt.Errorf("invalid function name '%s'", fn.Name)
	}

	paramNames := make(map[string]bool)
	for i, param := range fn.Params {
		if param.Name == "" {
			return fmt.Errorf("parameter %d: name cannot be empty", i)
		}
		if !isValidIdentifier(param.Name) {
			return fmt.Errorf("parameter %d: invalid name '%s'", i, param.Name)
		}
		if paramNames[param.Name] {
			return fmt.Errorf("duplicate parameter name: %s", param.Name)
		}
		paramNames[param.Name] = true

		switch param.Annotation {
		case "", ast.AnnotInt, ast.AnnotFloat, ast.AnnotBool:
		default:
			return fmt.Errorf("parameter %s: unknown annotation '%s'", param.Name, param.Annotation)
		}
	}

	if fn.Body == nil {
		return fmt.Errorf("function body cannot be null")
	}
	for i := range fn.Body {
		if err := v.validateStatement(&fn.Body[i]); err != nil {
			return fmt.Errorf("statement %d: %v", i, err)
		}
	}
	return nil
}

func (v *Validator) validateStatement(stmt *ast.Statement) error {
	switch stmt.Type {
	case ast.StmtAssign:
		if stmt.Target == "" {
			return fmt.Errorf("assign statement must have a target")
		}
		if !isValidIdentifier(stmt.Target) {
			return fmt.Errorf("invalid assignment target '%s'", stmt.Target)
		}
		if stmt.Value == nil {
			return fmt.Errorf("assign statement must have a value")
		}
		return v.validateExpression(stmt.Value)

	case ast.StmtAugAssign:
		if stmt.Target == "" {
			return fmt.Errorf("augmented assignment must have a target")
		}
		if stmt.Op == "" {
			return fmt.Errorf("augmented assignment must have an operator")
		}
		if stmt.Value == nil {
			return fmt.Errorf("augmented assignment must have a value")
		}
		return v.validateExpression(stmt.Value)

	case ast.StmtFor:
		if stmt.Target == "" {
			return fmt.Errorf("for statement must have a target")
		}
		if stmt.Iter == nil {
			return fmt.Errorf("for statement must have an iterable")
		}
		if err := v.validateExpression(stmt.Iter); err != nil {
			return err
		}
		return v.validateBody(stmt.Body)

	case ast.StmtWhile:
		if stmt.Cond == nil {
			return fmt.Errorf("while statement must have a condition")
		}
		if err := v.validateExpression(stmt.Cond); err != nil {
			return err
		}
		return v.validateBody(stmt.Body)

	case ast.StmtIf:
		if stmt.Cond == nil {
			return fmt.Errorf("if statement must have a condition")
		}
		if err := v.validateExpression(stmt.Cond); err != nil {
			return err
		}
		if err := v.validateBody(stmt.Then); err != nil {
			return err
		}
		return v.validateBody(stmt.Else)

	case ast.StmtReturn:
		if stmt.Value != nil {
			return v.validateExpression(stmt.Value)
		}
		return nil

	case ast.StmtExpr:
		if stmt.Value == nil {
			return fmt.Errorf("expression statement must have a value")
		}
		return v.validateExpression(stmt.Value)

	case ast.StmtBreak, ast.StmtPass:
		return nil

	default:
		return fmt.Errorf("unknown statement type: %s", stmt.Type)
	}
}

func (v *Validator) validateBody(body []ast.Statement) error {
	for i := range body {
		if err := v.validateStatement(&body[i]); err != nil {
			return fmt.Errorf("statement %d: %v", i, err)
		}
	}
	return nil
}

func (v *Validator) validateExpression(expr *ast.Expression) error {
	switch expr.Type {
	case ast.ExprConst:
		if expr.Value == nil {
			return fmt.Errorf("const expression must have a value")
		}
		switch expr.Value.(type) {
		case int, int64, float64, bool:
			return nil
		default:
			return fmt.Errorf("unsupported constant value %T", expr.Value)
		}

	case ast.ExprName:
		if expr.Name == "" {
			return fmt.Errorf("name expression must have a name")
		}
		if !isValidIdentifier(expr.Name) {
			return fmt.Errorf("invalid name '%s'", expr.Name)
		}
		return nil

	case ast.ExprBinOp, ast.ExprBoolOp:
		if expr.Op == "" {
			return fmt.Errorf("%s expression must have an operator", expr.Type)
		}
		if expr.Left == nil || expr.Right == nil {
			return fmt.Errorf("%s expression must have two operands", expr.Type)
		}
		if err := v.validateExpression(expr.Left); err != nil {
			return err
		}
		return v.validateExpression(expr.Right)

	case ast.ExprUnaryOp:
		if expr.Op == "" {
			return fmt.Errorf("unaryop expression must have an operator")
		}
		if expr.Operand == nil {
			return fmt.Errorf("unaryop expression must have an operand")
		}
		return v.validateExpression(expr.Operand)

	case ast.ExprCompare:
		if expr.Left == nil {
			return fmt.Errorf("compare expression must have a left operand")
		}
		if len(expr.Ops) == 0 || len(expr.Comparators) == 0 {
			return fmt.Errorf("compare expression must have operators and comparators")
		}
		if len(expr.Ops) != len(expr.Comparators) {
			return fmt.Errorf("compare expression has %d operators but %d comparators",
				len(expr.Ops), len(expr.Comparators))
		}
		if err := v.validateExpression(expr.Left); err != nil {
			return err
		}
		for i := range expr.Comparators {
			if err := v.validateExpression(&expr.Comparators[i]); err != nil {
				return err
			}
		}
		return nil

	case ast.ExprCall:
		if expr.Name == "" {
			return fmt.Errorf("call expression must have a callee name")
		}
		for i := range expr.Args {
			if err := v.validateExpression(&expr.Args[i]); err != nil {
				return err
			}
		}
		return nil

	case ast.ExprAttribute:
		if expr.Object == nil {
			return fmt.Errorf("attribute expression must have an object")
		}
		if expr.Attr == "" {
			return fmt.Errorf("attribute expression must have an attribute name")
		}
		return v.validateExpression(expr.Object)

	case ast.ExprSubscript:
		if expr.Object == nil {
			return fmt.Errorf("subscript expression must have an object")
		}
		if expr.Index == nil {
			return fmt.Errorf("subscript expression must have an index")
		}
		if err := v.validateExpression(expr.Object); err != nil {
			return err
		}
		return v.validateExpression(expr.Index)

	default:
		return fmt.Errorf("unknown expression type: %s", expr.Type)
	}
}

func (v *Validator) addError(format string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

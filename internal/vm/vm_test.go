package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinderlang/cinder/internal/heap"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	h := heap.New(heap.DefaultConfig())
	v := New(h)
	var out bytes.Buffer
	v.Stdout = &out
	err := v.Interpret(source)
	return out.String(), err
}

func TestArithmeticAndPrecedence(t *testing.T) {
	out, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestLocalsAndBlockScoping(t *testing.T) {
	out, err := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "inner\nouter\n", out)
}

func TestClosuresCaptureByReference(t *testing.T) {
	out, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				return count;
			}
			return increment;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestClassesFieldsAndMethods(t *testing.T) {
	out, err := run(t, `
		class Counter {
			init() {
				this.value = 0;
			}
			increment() {
				this.value = this.value + 1;
				return this.value;
			}
		}
		var c = Counter();
		print c.increment();
		print c.increment();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestInheritanceAndSuper(t *testing.T) {
	out, err := run(t, `
		class Animal {
			speak() {
				return "...";
			}
			describe() {
				return "An animal says " + this.speak();
			}
		}
		class Dog < Animal {
			speak() {
				return "Woof";
			}
			describe() {
				return super.describe() + "!";
			}
		}
		print Dog().describe();
	`)
	require.NoError(t, err)
	assert.Equal(t, "An animal says Woof!\n", out)
}

func TestWhileAndForLoops(t *testing.T) {
	out, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;

		for (var j = 0; j < 3; j = j + 1) print j;
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n0\n1\n2\n", out)
}

func TestRuntimeErrorOnTypeMismatch(t *testing.T) {
	_, err := run(t, `print 1 + "two";`)
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Contains(t, re.Message, "Operands must be either 2 numbers or 2 strings.")
}

func TestRuntimeErrorOnUndefinedVariable(t *testing.T) {
	_, err := run(t, `print missing;`)
	require.Error(t, err)
	re := err.(*RuntimeError)
	assert.Contains(t, re.Message, "Undefined variable")
}

func TestRuntimeErrorOnWrongArity(t *testing.T) {
	_, err := run(t, `fun f(a, b) { return a + b; } f(1);`)
	require.Error(t, err)
	re := err.(*RuntimeError)
	assert.Contains(t, re.Message, "Expected 2 arguments but got 1.")
}

func TestCompileErrorDoesNotRunVM(t *testing.T) {
	_, err := run(t, `var = ;`)
	require.Error(t, err)
	_, isRuntime := err.(*RuntimeError)
	assert.False(t, isRuntime, "a syntax error should be a CompileError, not a RuntimeError")
}

func TestNativeClockIsCallable(t *testing.T) {
	out, err := run(t, `print clock() >= 0;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestStackOverflowFromUnboundedRecursion(t *testing.T) {
	_, err := run(t, `
		fun recurse() {
			return recurse();
		}
		recurse();
	`)
	require.Error(t, err)
	re, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.True(t, strings.Contains(re.Message, "Stack overflow"))
}

package python

import (
	"path/filepath"
	"strings"
)

// DemoTask is the task the runnable stub hands to the root component.
const DemoTask = "Say hello (generated code)."

const runnableStubTemplate = `import asyncio


async def main():
    # '{{VAR}}' is constructed above. Provide any task you want to run:
    result = await {{VAR}}.run(task={{TASK}})
    print(result)


if __name__ == "__main__":
    asyncio.run(main())`

// Header names the document the program was generated from.
func Header(source string) string {
	name := filepath.Base(source)
	if source == "" {
		name = "<stdin>"
	}
	return "# This file was generated from: " + name + "\n" +
		"# It reconstructs your component configuration in pure Python.\n" +
		"# You can now edit it freely (no configuration file needed at runtime)."
}

// RunnableStub is the fixed entry point appended to every program.
func RunnableStub(varName string) string {
	return strings.NewReplacer("{{VAR}}", varName, "{{TASK}}", quote(DemoTask)).Replace(runnableStubTemplate)
}

// Assemble joins the program sections in fixed order, one blank line apart,
// with a single trailing newline.
func Assemble(header string, imports []string, body, stub string) string {
	sections := []string{
		strings.TrimRight(header, "\n"),
		strings.Join(imports, "\n"),
		strings.TrimRight(body, "\n"),
		strings.TrimRight(stub, "\n"),
	}
	var b strings.Builder
	for _, s := range sections {
		if s == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}
	b.WriteString("\n")
	return b.String()
}

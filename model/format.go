package model

import (
	"fmt"
	"io"
	"strings"
)

// CDL renders the dataset back into CDL notation. The output is canonical
// but complete: re-parsing it builds an equal Dataset.
func (ds *Dataset) CDL() string {
	var buf strings.Builder

	ds.writeCDL(&buf, 0, true)

	return buf.String()
}

// WriteCDL writes the dataset in CDL notation to w.
func (ds *Dataset) WriteCDL(w io.Writer) error {
	_, err := io.WriteString(w, ds.CDL())

	return err
}

func (ds *Dataset) writeCDL(buf *strings.Builder, depth int, root bool) {
	indent := strings.Repeat("  ", depth)

	if root {
		fmt.Fprintf(buf, "netcdf %s {\n", ds.Name)
	} else {
		fmt.Fprintf(buf, "%sgroup: %s {\n", indent, ds.Name)
	}

	if len(ds.Dimensions) > 0 {
		fmt.Fprintf(buf, "%sdimensions:\n", indent)

		for _, d := range ds.Dimensions {
			if d.Unlimited {
				fmt.Fprintf(buf, "%s  %s = UNLIMITED ; // (%d currently)\n",
					indent, d.Name, d.Length)
			} else {
				fmt.Fprintf(buf, "%s  %s = %d ;\n", indent, d.Name, d.Length)
			}
		}
	}

	if len(ds.Variables) > 0 || len(ds.Attributes) > 0 {
		fmt.Fprintf(buf, "%svariables:\n", indent)

		for _, v := range ds.Variables {
			fmt.Fprintf(buf, "%s  %s %s%s ;\n",
				indent, v.Type, v.Name, dimList(v))

			for _, a := range v.Attributes {
				fmt.Fprintf(buf, "%s    %s:%s = %s ;\n",
					indent, v.Name, a.Name, attrValues(a))
			}
		}

		if len(ds.Attributes) > 0 {
			fmt.Fprintf(buf, "\n%s  // global attributes:\n", indent)

			for _, a := range ds.Attributes {
				fmt.Fprintf(buf, "%s  :%s = %s ;\n", indent, a.Name, attrValues(a))
			}
		}
	}

	if datafied := dataVariables(ds); len(datafied) > 0 {
		fmt.Fprintf(buf, "%sdata:\n", indent)

		for _, v := range datafied {
			fmt.Fprintf(buf, "%s  %s = %s ;\n", indent, v.Name, dataValues(v))
		}
	}

	for _, g := range ds.Groups {
		g.writeCDL(buf, depth+1, false)
	}

	if root {
		buf.WriteString("}\n")
	} else {
		fmt.Fprintf(buf, "%s}\n", indent)
	}
}

func dimList(v *Variable) string {
	if v.Scalar() {
		return ""
	}

	names := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		names[i] = d.Name
	}

	return "(" + strings.Join(names, ", ") + ")"
}

func attrValues(a *Attribute) string {
	parts := make([]string, len(a.Values))
	for i, v := range a.Values {
		parts[i] = v.CDL()
	}

	return strings.Join(parts, ", ")
}

func dataValues(v *Variable) string {
	parts := make([]string, len(v.Data))
	for i, val := range v.Data {
		parts[i] = val.CDL()
	}

	return strings.Join(parts, ", ")
}

func dataVariables(ds *Dataset) []*Variable {
	var out []*Variable

	for _, v := range ds.Variables {
		if v.Data != nil {
			out = append(out, v)
		}
	}

	return out
}

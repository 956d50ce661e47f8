package transform

import (
	"fmt"
	"regexp"

	"github.com/recast-io/recast/internal/query"
	"github.com/recast-io/recast/internal/value"
)

// Builtin returns the registry of built-in transformations.
func Builtin() *Definitions {
	return NewDefinitions().
		Add(NewDefinition("select").
			AddAliases("j", "jp", "jsonpath").
			WithDescription("Selects data from the input via jsonpath query. The result is always shaped like an array with zero or more elements. See `flatten` if you want to remove one level of nesting on single element results.").
			AddArg(NewArg("query").
				WithDescription("A jsonpath query."))).
		Add(NewDefinition("mutate").
			AddAlias("mut").
			WithDescription("Replaces every query match with the result of applying a nested transformation to it.").
			AddArgs(
				NewArg("query").
					WithDescription("A jsonpath query matching the values to mutate."),
				NewArg("expr").
					WithDescription("The transformation applied to each match."))).
		Add(NewDefinition("delete").
			AddAlias("del").
			WithDescription("Replaces every query match with null, keeping the shape of the surrounding collection.").
			AddArg(NewArg("query").
				WithDescription("A jsonpath query matching the values to delete."))).
		Add(NewDefinition("remove").
			AddAlias("rm").
			WithDescription("Removes every query match entirely, shrinking the surrounding collection.").
			AddArg(NewArg("query").
				WithDescription("A jsonpath query matching the values to remove."))).
		Add(NewDefinition("flatten").
			AddAlias("f").
			WithDescription("Removes one level of nesting if the data is shaped like an array or one-elemented object. If the input is a one-elemented array it will be removed entirely, leaving the single element as output.")).
		Add(NewDefinition("flatten_keys").
			AddAliases("F", "flatten-keys").
			WithDescription("Flattens the input to an object with flat keys. The structure of the result is similar to the output of `gron`: <https://github.com/TomNomNom/gron>.").
			AddArg(NewArg("prefix").
				WithDefault(value.Str("data")).
				WithDescription("The prefix for flattened keys."))).
		Add(NewDefinition("expand_keys").
			AddAliases("e", "expand-keys").
			WithDescription("Recursively expands flat object keys to nested objects.")).
		Add(NewDefinition("remove_empty_values").
			AddAliases("r", "remove-empty-values").
			WithDescription("Recursively removes nulls, empty arrays and empty objects from the data. Top level empty values are not removed.")).
		Add(NewDefinition("deep_merge").
			AddAliases("m", "deep-merge").
			WithDescription("If the data is an array, all children are merged into one from left to right. Otherwise this is a no-op.")).
		Add(NewDefinition("keys").
			AddAlias("k").
			WithDescription("Transforms the data into an array of object keys which is empty if the top level value is not an object.")).
		Add(NewDefinition("values").
			AddAlias("vals").
			WithDescription("Transforms the data into an array of the object values or array elements, which is empty if the top level value is neither.")).
		Add(NewDefinition("delete_keys").
			AddAliases("d", "delete-keys").
			WithDescription("Deletes top level object keys matching a regex pattern. Nested collections are not visited.").
			AddArg(NewArg("pattern").
				WithDescription("A regex pattern to match the keys that should be deleted."))).
		Add(NewDefinition("sort").
			AddAlias("s").
			WithDescription("Sorts collections (arrays and objects) recursively. If `max_depth` is omitted, the sorter will recursively visit all child collections and sort them.").
			AddArgs(
				NewArg("order").
					WithDefault(value.Str("asc")).
					WithDescription("The sort order. Possible values are \"asc\" and \"desc\"."),
				NewArg("max_depth").
					Required(false).
					WithDescription("Defines the upper bound for child collections to be visited and sorted. A max depth of 0 means that only the top level is sorted."))).
		Add(NewDefinition("arrays_to_objects").
			AddAliases("ato", "arrays-to-objects").
			WithDescription("Recursively transforms all arrays into objects with the array index as key.")).
		Add(NewDefinition("each_key").
			AddAliases("ek", "each-key").
			WithDescription("Applies a transformation to every top level object key.").
			AddArg(NewArg("expr").
				WithDescription("The transformation applied to each key."))).
		Add(NewDefinition("each_value").
			AddAliases("ev", "each-value").
			WithDescription("Applies a transformation to every top level array element or object value.").
			AddArg(NewArg("expr").
				WithDescription("The transformation applied to each value."))).
		Add(NewDefinition("visit_keys").
			AddAliases("vk", "visit-keys").
			WithDescription("Recursively applies a transformation to every object key, children before parents.").
			AddArgs(
				NewArg("expr").
					WithDescription("The transformation applied to each key."),
				NewArg("max_depth").
					Required(false).
					WithDescription("Defines the upper bound for child collections to be visited. A max depth of 0 only visits the top level."))).
		Add(NewDefinition("visit_values").
			AddAliases("vv", "visit-values").
			WithDescription("Recursively applies a transformation to every array element and object value, children before parents.").
			AddArgs(
				NewArg("expr").
					WithDescription("The transformation applied to each value."),
				NewArg("max_depth").
					Required(false).
					WithDescription("Defines the upper bound for child collections to be visited. A max depth of 0 only visits the top level."))).
		Add(NewDefinition("replace_string").
			AddAliases("rs", "replace-string").
			WithDescription("Replaces regex pattern matches in string values. Non-string values are left untouched.").
			AddArgs(
				NewArg("pattern").
					WithDescription("A regex pattern to match."),
				NewArg("replacement").
					WithDescription("The replacement template. Capture groups can be referenced as $1 or ${name}."),
				NewArg("limit").
					WithDefault(value.Uint(0)).
					WithDescription("The maximum number of replacements per string. Zero means unlimited."))).
		Add(NewDefinition("wrap_array").
			AddAliases("wa", "wrap-array").
			WithDescription("Wraps the data in a one-elemented array.")).
		Add(NewDefinition("wrap_object").
			AddAliases("wo", "wrap-object").
			WithDescription("Wraps the data in an object with a single key.").
			AddArg(NewArg("key").
				WithDefault(value.Str("data")).
				WithDescription("The key the data is wrapped under."))).
		Add(NewDefinition("insert").
			AddAlias("ins").
			WithDescription("Inserts a value into the data. Objects get the value set under a key, arrays get it inserted at an index, appending when the index is out of bounds. Anything else is left untouched.").
			AddArgs(
				NewArg("key").
					WithDescription("The object key or array index to insert at."),
				NewArg("value").
					WithDescription("The value to insert."))).
		Add(NewDefinition("eval").
			AddAlias("x").
			WithDescription("Evaluates an expression against the data, which is bound as `value` in the environment. Runtime errors leave the data unchanged.").
			AddArg(NewArg("code").
				WithDescription("The expression to evaluate.")))
}

// Compile parses the pipeline expressions against the built-in registry and
// builds the resulting chain.
func Compile(inputs ...string) (*Chain, error) {
	defs := Builtin()

	var all []*DefinitionMatch
	for _, input := range inputs {
		matches, err := defs.Parse(input)
		if err != nil {
			return nil, err
		}
		all = append(all, matches...)
	}
	return FromMatches(all)
}

// FromMatches builds a chain from resolved definition matches.
func FromMatches(matches []*DefinitionMatch) (*Chain, error) {
	ts := make([]Transform, 0, len(matches))
	for _, m := range matches {
		t, err := fromMatch(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name(), err)
		}
		ts = append(ts, t)
	}
	return NewChain(ts...), nil
}

func fromMatch(m *DefinitionMatch) (Transform, error) {
	switch m.Name() {
	case "select":
		q, err := m.StrValue("query")
		if err != nil {
			return nil, err
		}
		return newSelect(q)
	case "mutate":
		path, err := queryArg(m)
		if err != nil {
			return nil, err
		}
		chain, err := exprChain(m, "expr")
		if err != nil {
			return nil, err
		}
		return &mutate{path: path, chain: chain}, nil
	case "delete":
		path, err := queryArg(m)
		if err != nil {
			return nil, err
		}
		return &deleteMatches{path: path}, nil
	case "remove":
		path, err := queryArg(m)
		if err != nil {
			return nil, err
		}
		return &removeMatches{path: path}, nil
	case "flatten":
		return flatten{}, nil
	case "flatten_keys":
		prefix, err := m.StrValue("prefix")
		if err != nil {
			return nil, err
		}
		return &flattenKeys{prefix: prefix}, nil
	case "expand_keys":
		return expandKeys{}, nil
	case "remove_empty_values":
		return removeEmptyValues{}, nil
	case "deep_merge":
		return deepMerge{}, nil
	case "keys":
		return keys{}, nil
	case "values":
		return values{}, nil
	case "delete_keys":
		pattern, err := m.StrValue("pattern")
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return &deleteKeys{re: re}, nil
	case "sort":
		order, err := m.StrValue("order")
		if err != nil {
			return nil, err
		}
		o, err := ParseOrder(order)
		if err != nil {
			return nil, err
		}
		maxDepth, err := maxDepthArg(m)
		if err != nil {
			return nil, err
		}
		return NewValueSorter(o, maxDepth), nil
	case "arrays_to_objects":
		return arraysToObjects{}, nil
	case "each_key":
		chain, err := exprChain(m, "expr")
		if err != nil {
			return nil, err
		}
		return newVisit(NewKeyVisitor(chain), 0), nil
	case "each_value":
		chain, err := exprChain(m, "expr")
		if err != nil {
			return nil, err
		}
		return newVisit(NewValueVisitor(chain), 0), nil
	case "visit_keys":
		chain, err := exprChain(m, "expr")
		if err != nil {
			return nil, err
		}
		maxDepth, err := maxDepthArg(m)
		if err != nil {
			return nil, err
		}
		return newVisit(NewKeyVisitor(chain), maxDepth), nil
	case "visit_values":
		chain, err := exprChain(m, "expr")
		if err != nil {
			return nil, err
		}
		maxDepth, err := maxDepthArg(m)
		if err != nil {
			return nil, err
		}
		return newVisit(NewValueVisitor(chain), maxDepth), nil
	case "replace_string":
		pattern, err := m.StrValue("pattern")
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		replacement, err := m.StrValue("replacement")
		if err != nil {
			return nil, err
		}
		limit, err := m.IntValue("limit")
		if err != nil {
			return nil, err
		}
		if limit <= 0 {
			limit = -1
		}
		return &replaceString{re: re, replacement: replacement, limit: int(limit)}, nil
	case "wrap_array":
		return wrapArray{}, nil
	case "wrap_object":
		key, err := m.StrValue("key")
		if err != nil {
			return nil, err
		}
		return &wrapObject{key: key}, nil
	case "insert":
		key, ok := m.Value("key")
		if !ok {
			return nil, fmt.Errorf("argument `key`: missing")
		}
		val, ok := m.Value("value")
		if !ok {
			return nil, fmt.Errorf("argument `value`: missing")
		}
		return newInsert(key, val), nil
	case "eval":
		code, err := m.StrValue("code")
		if err != nil {
			return nil, err
		}
		return newEval(code)
	}
	return nil, fmt.Errorf("%w `%s`", ErrUnknownTransform, m.Name())
}

func queryArg(m *DefinitionMatch) (*query.Path, error) {
	q, err := m.StrValue("query")
	if err != nil {
		return nil, err
	}
	return query.Parse(q)
}

func exprChain(m *DefinitionMatch, name string) (*Chain, error) {
	nested, ok := m.Expr(name)
	if !ok {
		return nil, fmt.Errorf("argument `%s`: expected expression", name)
	}
	return FromMatches(nested)
}

func maxDepthArg(m *DefinitionMatch) (int64, error) {
	if !m.IsPresent("max_depth") {
		return -1, nil
	}
	d, err := m.IntValue("max_depth")
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("argument `max_depth`: expected non-negative integer, got %d", d)
	}
	return d, nil
}

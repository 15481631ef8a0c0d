package main

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/meigma/pak/property"
)

// tableNode renders a table as a YAML mapping in field order.
func tableNode(t *property.Table) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range t.Fields() {
		v, err := propertyNode(f.Property)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		m.Content = append(m.Content, scalar(f.Name), v)
	}
	return m, nil
}

func propertyNode(p property.Property) (*yaml.Node, error) {
	switch p := p.(type) {
	case *property.Int:
		return scalar(strconv.FormatInt(p.Value(), 10)), nil
	case *property.UInt:
		return scalar(strconv.FormatUint(p.Value(), 10)), nil
	case *property.Float:
		return scalar(strconv.FormatFloat(float64(p.Value), 'g', -1, 32)), nil
	case *property.Bool:
		return scalar(strconv.FormatBool(p.Value)), nil
	case *property.Str:
		s, err := p.Value()
		if err != nil {
			return nil, err
		}
		return quoted(s), nil
	case *property.Name:
		return quoted(p.Value), nil
	case *property.Enum:
		return quoted(p.Value), nil
	case *property.Byte:
		return scalar(strconv.Itoa(int(p.Value))), nil
	case *property.Text:
		if p.Absent() {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
		}
		return quoted(p.Value), nil
	case *property.Struct:
		return structNode(p)
	case *property.Array:
		return arrayNode(p)
	case *property.Map:
		return mapNode(p)
	}
	return nil, fmt.Errorf("%w: %s", property.ErrUnsupportedType, p.Kind())
}

func structNode(p *property.Struct) (*yaml.Node, error) {
	switch p.Type {
	case property.StructVector:
		return flow(
			scalar(strconv.Itoa(int(p.Vector[0]))),
			scalar(strconv.Itoa(int(p.Vector[1]))),
			scalar(strconv.Itoa(int(p.Vector[2]))),
		), nil
	case property.StructLinearColor:
		var items []*yaml.Node
		for _, c := range p.Color {
			items = append(items, scalar(strconv.FormatFloat(float64(c), 'g', -1, 32)))
		}
		return flow(items...), nil
	}
	return tableNode(p.Table)
}

func arrayNode(p *property.Array) (*yaml.Node, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	switch p.Elem {
	case property.KindInt:
		for _, v := range p.Ints() {
			seq.Content = append(seq.Content, scalar(strconv.Itoa(int(v))))
		}
		seq.Style = yaml.FlowStyle
	case property.KindFloat:
		for _, v := range p.Floats() {
			seq.Content = append(seq.Content, scalar(strconv.FormatFloat(float64(v), 'g', -1, 32)))
		}
		seq.Style = yaml.FlowStyle
	case property.KindEnum, property.KindName:
		for _, v := range p.Strings() {
			seq.Content = append(seq.Content, quoted(v))
		}
	case property.KindStruct:
		for i, t := range p.Structs() {
			n, err := tableNode(t)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq.Content = append(seq.Content, n)
		}
	}
	return seq, nil
}

func mapNode(p *property.Map) (*yaml.Node, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range p.Entries() {
		key := quoted(e.Key.Name)
		if p.Key == property.KindInt {
			key = scalar(strconv.Itoa(int(e.Key.Int)))
		}
		v, err := tableNode(e.Value)
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key.Value, err)
		}
		m.Content = append(m.Content, key, v)
	}
	return m, nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

func quoted(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: v}
}

func flow(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle, Content: items}
}

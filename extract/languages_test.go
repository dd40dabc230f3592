package extract

import (
	"testing"

	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/stretchr/testify/require"

	"github.com/arjunmahishi/treeinv/types"
)

func TestJava(t *testing.T) {
	t.Parallel()

	src := `package com.example;

import java.util.List;
import static java.lang.Math.max;

@Service
public class Repo extends Base implements Closeable, Runnable {
    public static final int LIMIT = 5;
    private String name;

    public Repo(String name) {
        this.name = name;
    }

    @Override
    public void run() {}

    static int count() { return 0; }
}

interface Store {
    void save();
}
`
	tree, source := parse(t, java.GetLanguage(), src)
	e := NewJava()

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"Repo", "Store"}, names(classes))
	repo := classes[0]
	require.Equal(t, "Base", repo.Superclass)
	require.Equal(t, []string{"Closeable", "Runnable"}, repo.Interfaces)
	require.Equal(t, types.VisibilityPublic, repo.Visibility)
	require.Equal(t, []string{"@Service"}, repo.Annotations)
	require.Equal(t, types.ClassTypeInterface, classes[1].ClassType)

	funcs := e.Functions(tree, source)
	require.Equal(t, []string{"Repo", "run", "count", "save"}, names(funcs))
	require.True(t, funcs[0].IsConstructor)
	require.Empty(t, funcs[0].ReturnType)
	require.Equal(t, "Repo", funcs[0].ClassName)
	require.Equal(t, []string{"@Override"}, funcs[1].Annotations)
	require.Equal(t, "void", funcs[1].ReturnType)
	require.Equal(t, types.VisibilityPackage, funcs[2].Visibility)
	require.True(t, funcs[2].IsStatic)
	require.Equal(t, types.VisibilityPublic, funcs[3].Visibility)
	require.Equal(t, "Store", funcs[3].ClassName)

	vars := e.Variables(tree, source)
	require.Equal(t, []string{"LIMIT", "name"}, names(vars))
	require.True(t, vars[0].IsConstant)
	require.Equal(t, "5", vars[0].Value)
	require.Equal(t, types.VisibilityPrivate, vars[1].Visibility)
	require.Equal(t, "Repo", vars[1].ClassName)

	imports := e.Imports(tree, source)
	require.Equal(t, []string{"java.util.List", "java.lang.Math.max"}, names(imports))
	require.Equal(t, []string{"List"}, imports[0].Names)

	pkgs := Packages(e, tree, source)
	require.Len(t, pkgs, 1)
	require.Equal(t, "com.example", pkgs[0].Name)
}

func TestJavaScript(t *testing.T) {
	t.Parallel()

	src := `import React, { useState as useS, useEffect } from 'react';
import * as path from 'path';
const fs = require('fs');
const { join } = require('path');

export const add = (a, b) => a + b;
let counter = 0;

class Widget extends Base {
  #secret = 1;
  static create() { return new Widget(); }
  constructor() { super(); }
  async load() {}
}

function helper() {
  const inner = 1;
  return inner;
}
`
	tree, source := parse(t, javascript.GetLanguage(), src)
	e := NewJavaScript("javascript")

	imports := e.Imports(tree, source)
	require.Equal(t, []string{"react", "path", "fs", "path"}, names(imports))
	require.Equal(t, "React", imports[0].Alias)
	require.Equal(t, []string{"useState", "useEffect"}, imports[0].Names)
	require.Equal(t, []string{"*"}, imports[1].Names)
	require.Equal(t, "path", imports[1].Alias)
	require.Equal(t, "fs", imports[2].Alias)
	require.Equal(t, []string{"join"}, imports[3].Names)

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"Widget"}, names(classes))
	require.Equal(t, "Base", classes[0].Superclass)

	funcs := e.Functions(tree, source)
	require.Equal(t, []string{"add", "create", "constructor", "load", "helper"}, names(funcs))
	add := funcs[0]
	require.False(t, add.IsMethod)
	require.Contains(t, add.Modifiers, "export")
	require.Equal(t, []string{"a", "b"}, add.Parameters)
	require.True(t, funcs[1].IsStatic)
	require.Equal(t, "Widget", funcs[1].ClassName)
	require.True(t, funcs[2].IsConstructor)
	require.True(t, funcs[3].IsAsync)

	vars := e.Variables(tree, source)
	require.Contains(t, names(vars), "counter")
	require.NotContains(t, names(vars), "add")
	require.NotContains(t, names(vars), "inner")
	require.NotContains(t, names(vars), "fs")
}

func TestTypeScript(t *testing.T) {
	t.Parallel()

	src := `interface Shape extends Named {
  area(): number;
}

enum Color { Red, Green }

export abstract class Square implements Shape {
  private side: number = 1;
  area(): number { return this.side * this.side; }
}
`
	tree, source := parse(t, typescript.GetLanguage(), src)
	e := NewJavaScript("typescript")

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"Shape", "Color", "Square"}, names(classes))
	require.Equal(t, types.ClassTypeInterface, classes[0].ClassType)
	require.Equal(t, []string{"Named"}, classes[0].Interfaces)
	require.Equal(t, types.ClassTypeEnum, classes[1].ClassType)
	require.Equal(t, []string{"Shape"}, classes[2].Interfaces)
	require.Contains(t, classes[2].Modifiers, "abstract")
	require.Contains(t, classes[2].Modifiers, "export")

	funcs := e.Functions(tree, source)
	area := find(t, funcs, "area")
	require.True(t, area.IsMethod)
	require.Equal(t, "Square", area.ClassName)
	require.Equal(t, "number", area.ReturnType)
	require.Equal(t, "typescript", area.Language)
}

func TestRust(t *testing.T) {
	t.Parallel()

	src := `use std::collections::{HashMap, HashSet};
use std::io as stdio;

#[derive(Debug)]
pub struct Point {
    x: i32,
}

pub(crate) trait Shape {
    fn area(&self) -> f64;
}

impl Shape for Point {
    fn area(&self) -> f64 { 0.0 }
}

impl Point {
    pub fn new() -> Self { Point { x: 0 } }
    fn x(&self) -> i32 { self.x }
}

const LIMIT: u32 = 3;
static mut COUNT: u32 = 0;

async fn run() {}
`
	tree, source := parse(t, rust.GetLanguage(), src)
	e := NewRust()

	imports := e.Imports(tree, source)
	require.Len(t, imports, 2)
	require.Equal(t, "std::collections", imports[0].Module)
	require.Equal(t, []string{"HashMap", "HashSet"}, imports[0].Names)
	require.Equal(t, "std::io", imports[1].Module)
	require.Equal(t, "stdio", imports[1].Alias)

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"Point", "Shape"}, names(classes))
	point := classes[0]
	require.Equal(t, types.ClassTypeStruct, point.ClassType)
	require.Equal(t, []string{"Shape"}, point.Interfaces)
	require.Equal(t, []string{"#[derive(Debug)]"}, point.Annotations)
	require.Equal(t, types.VisibilityPackage, classes[1].Visibility)

	funcs := e.Functions(tree, source)
	require.Equal(t, []string{"area", "area", "new", "x", "run"}, names(funcs))
	require.Equal(t, "Shape", funcs[0].ClassName)
	require.Equal(t, "Point", funcs[1].ReceiverType)
	require.Equal(t, types.VisibilityPublic, funcs[1].Visibility)
	require.True(t, funcs[2].IsConstructor)
	require.True(t, funcs[2].IsStatic)
	require.False(t, funcs[3].IsStatic)
	require.Equal(t, types.VisibilityPrivate, funcs[3].Visibility)
	require.True(t, funcs[4].IsAsync)
	require.False(t, funcs[4].IsMethod)

	vars := e.Variables(tree, source)
	require.Equal(t, []string{"LIMIT", "COUNT"}, names(vars))
	require.True(t, vars[0].IsConstant)
	require.Equal(t, "u32", vars[0].VarType)
	require.False(t, vars[1].IsConstant)
}

func TestC(t *testing.T) {
	t.Parallel()

	src := `#include <stdio.h>
#include "util.h"

#define MAX 10

typedef struct {
    int x;
} point_t;

static int counter = 0;
int shared;

int prototype(int a);

static void helper(void) {}

char *name(point_t *p, int n) {
    int local = 1;
    return 0;
}
`
	tree, source := parse(t, c.GetLanguage(), src)
	e := NewCFamily("c")

	imports := e.Imports(tree, source)
	require.Equal(t, []string{"stdio.h", "util.h"}, names(imports))

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"point_t"}, names(classes))

	vars := e.Variables(tree, source)
	require.Equal(t, []string{"MAX", "x", "counter", "shared"}, names(vars))
	require.True(t, vars[0].IsConstant)
	require.Equal(t, "10", vars[0].Value)
	require.Equal(t, "point_t", vars[1].ClassName)
	require.Equal(t, types.VisibilityPrivate, vars[2].Visibility)
	require.Equal(t, "0", vars[2].Value)

	funcs := e.Functions(tree, source)
	require.Equal(t, []string{"helper", "name"}, names(funcs))
	require.Equal(t, types.VisibilityPrivate, funcs[0].Visibility)
	require.Equal(t, "char *", funcs[1].ReturnType)
	require.Equal(t, []string{"point_t *p", "int n"}, funcs[1].Parameters)
}

func TestCpp(t *testing.T) {
	t.Parallel()

	src := `#include <string>

namespace app {

class Widget : public Base {
public:
    Widget();
    int size;
private:
    void draw() {}
};

Widget::Widget() {}

}
`
	tree, source := parse(t, cpp.GetLanguage(), src)
	e := NewCFamily("cpp")

	classes := e.Classes(tree, source)
	require.Equal(t, []string{"app", "Widget"}, names(classes))
	require.Equal(t, types.ClassTypeNamespace, classes[0].ClassType)
	require.Equal(t, "Base", classes[1].Superclass)
	require.True(t, classes[1].IsNested)
	require.Equal(t, "app", classes[1].ParentClass)

	funcs := e.Functions(tree, source)
	require.Equal(t, []string{"draw", "Widget"}, names(funcs))
	draw := funcs[0]
	require.True(t, draw.IsMethod)
	require.Equal(t, "Widget", draw.ClassName)
	require.Equal(t, types.VisibilityPrivate, draw.Visibility)
	ctor := funcs[1]
	require.True(t, ctor.IsMethod)
	require.True(t, ctor.IsConstructor)
	require.Equal(t, "Widget", ctor.ClassName)

	vars := e.Variables(tree, source)
	size := find(t, vars, "size")
	require.Equal(t, types.VisibilityPublic, size.Visibility)
	require.Equal(t, "Widget", size.ClassName)

	pkgs := Packages(e, tree, source)
	require.Len(t, pkgs, 1)
	require.Equal(t, "app", pkgs[0].Namespace)
}

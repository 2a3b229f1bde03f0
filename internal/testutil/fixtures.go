package testutil

// Fixtures содержит готовые тестовые данные, чтобы не дублировать их по тестам.
var Fixtures = struct {
	// ScenarioYAML — полный валидный сценарий: стена, укрытие, маршрут
	// патруля, регион поста, часовой, беглец с точкой эвакуации и
	// нарушитель под внешним управлением.
	ScenarioYAML string

	// BrokenScenarioYAML не проходит валидацию: маршрут из одной точки.
	BrokenScenarioYAML string
}{
	ScenarioYAML: `
name: test-yard
obstacles:
  - {kind: wall, min_x: 4, min_y: 0, max_x: 5, max_y: 7}
  - {kind: cover, min_x: 8, min_y: 2, max_x: 9, max_y: 3}
routes:
  - name: perimeter
    points:
      - {x: 1, y: 1}
      - {x: 9, y: 1}
      - {x: 9, y: 9}
regions:
  - name: inner yard
    vertices:
      - {x: 3, y: 3}
      - {x: 7, y: 3}
      - {x: 5, y: 7}
spawns:
  - name: sentry-1
    kind: hostile
    archetype: warden
    position: {x: 1, y: 1}
    route: perimeter
  - name: captive-1
    kind: fugitive
    archetype: captive
    position: {x: 6, y: 6}
  - name: raider-1
    kind: intruder
    archetype: raider
    position: {x: 12, y: 6}
escape:
  extraction: {x: 0, y: 9}
  protector: {x: 2, y: 8}
zone:
  width: 30
  height: 20
grid:
  origin_x: -3
  origin_y: -3
  width: 16
  height: 16
  cell_size: 1
`,

	BrokenScenarioYAML: `
name: broken-yard
routes:
  - name: stub
    points:
      - {x: 1, y: 1}
zone:
  width: 10
  height: 10
grid:
  origin_x: 0
  origin_y: 0
  width: 10
  height: 10
  cell_size: 1
`,
}

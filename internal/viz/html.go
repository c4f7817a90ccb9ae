package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Width  float64 // Viewport the positions were computed for
	Height float64
}

// GenerateHTML generates a self-contained HTML page that draws the graph at
// its precomputed positions.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if !(opts.Width > 0) || !(opts.Height > 0) {
		return "", fmt.Errorf("invalid viewport %gx%g", opts.Width, opts.Height)
	}

	if graph.IsEmpty() {
		return generateEmptyHTML(), nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     graph.Title,
		GraphJSON: template.JS(graphJSON),
		Width:     opts.Width,
		Height:    opts.Height,
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	GraphJSON template.JS
	Width     float64
	Height    float64
}

// generateEmptyHTML returns HTML for an empty graph state.
func generateEmptyHTML() string {
	return `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Coauthor Network - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state {
      text-align: center;
      color: #666;
    }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No coauthors</h2>
    <p>No papers matched the filters.</p>
  </div>
</body>
</html>`
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #f5f5f5;
    }
    #cy {
      width: {{.Width}}px;
      height: {{.Height}}px;
      margin: 0 auto;
      background: white;
    }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 300px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .label {
      font-weight: bold;
      margin-bottom: 4px;
    }
    #tooltip .detail {
      color: #555;
      margin: 2px 0;
    }
  </style>
</head>
<body>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        userZoomingEnabled: true,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '9px',
              'text-valign': 'bottom',
              'text-margin-y': '3px',
              'width': 'data(size)',
              'height': 'data(size)'
            }
          },
          {
            selector: 'node[?isCenter]',
            style: {
              'background-color': '#E8923A',
              'font-size': '12px',
              'font-weight': 'bold'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'opacity': 0.6,
              'curve-style': 'haystack',
              'width': 'mapData(weight, 1, 10, 1, 5)'
            }
          },
          {
            selector: 'node.highlighted',
            style: {
              'border-width': 3,
              'border-color': '#ff6b6b'
            }
          },
          {
            selector: '.dimmed',
            style: {
              'opacity': 0.15
            }
          }
        ],
        layout: {
          name: 'preset',
          fit: false
        }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                  .replace(/</g, '&lt;')
                  .replace(/>/g, '&gt;')
                  .replace(/"/g, '&quot;');
      }

      function showTooltip(evt, content) {
        tooltip.innerHTML = content;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      }

      cy.on('mouseover', 'node', function(evt) {
        const data = evt.target.data();
        showTooltip(evt, '<div class="label">' + escapeHtml(data.label) + '</div>' +
          '<div class="detail">Papers: ' + data.paperCount + '</div>');
      });

      cy.on('mouseover', 'edge', function(evt) {
        const data = evt.target.data();
        showTooltip(evt, '<div class="label">' + escapeHtml(data.source) + ' – ' + escapeHtml(data.target) + '</div>' +
          '<div class="detail">Shared papers: ' + data.weight + '</div>');
      });

      cy.on('mouseout', 'node, edge', function() {
        tooltip.style.display = 'none';
      });

      cy.on('tap', 'node', function(evt) {
        const neighborhood = evt.target.closedNeighborhood();
        cy.elements().removeClass('highlighted dimmed');
        neighborhood.nodes().addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
</body>
</html>`

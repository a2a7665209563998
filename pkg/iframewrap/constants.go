package iframewrap

const parentTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Preview | %s</title>
<style>
  html,body{height:100%%;margin:0;background:#f4f4f5}
  .preview-header {
    background: linear-gradient(75deg, #e4e4e7, #d4d4d8);
    padding: 8px 16px;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    font-size: 13px;
    border-bottom: 1px solid #a1a1aa;
    height: 34px;
    box-sizing: border-box;
    display: flex;
    align-items: center;
    justify-content: space-between;
  }
  .preview-url {
    opacity: 0.85;
    overflow: hidden;
    text-overflow: ellipsis;
    white-space: nowrap;
  }
  .preview-stage {
    display: flex;
    justify-content: center;
    padding: 24px;
    height: calc(100%% - 34px);
    box-sizing: border-box;
  }
  .preview-container {
    box-sizing: border-box;
    max-width: 100%%;
  }
</style>
</head>
<body>
<div class="preview-header">
  <span class="preview-label">Iframe preview</span>
  <a class="preview-url" href="%s" target="_blank" rel="noopener noreferrer">%s</a>
</div>
<div class="preview-stage">
<div class="preview-container" style="%s">
%s
</div>
</div>
</body>
</html>`

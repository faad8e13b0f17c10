package components

// Kept inline so the site ships as a single binary with no static directory.
const stylesheet = `
:root { --ink: #1d1b26; --muted: #5c5870; --accent: #ff5a5f; --bg: #fffaf5; --ok: #1f8a5b; --err: #b42318; }
* { box-sizing: border-box; }
body { margin: 0; font-family: system-ui, -apple-system, "Segoe UI", sans-serif; color: var(--ink); background: var(--bg); line-height: 1.6; }
a { color: var(--accent); }
.container { max-width: 960px; margin: 0 auto; padding: 0 1.25rem; }
.topbar { border-bottom: 1px solid #eee3d8; background: #fff; }
.topbar-inner { display: flex; align-items: center; justify-content: space-between; height: 64px; }
.topbar ul, .footer ul { list-style: none; display: flex; gap: 1.25rem; margin: 0; padding: 0; }
.topbar a { text-decoration: none; color: var(--ink); }
.topbar a[aria-current="page"] { color: var(--accent); }
.logo { font-weight: 800; font-size: 1.25rem; }
.hero { padding: 4rem 0 2rem; text-align: center; }
.hero h1 { font-size: 2.75rem; line-height: 1.1; margin: 0 0 1rem; }
.lead { color: var(--muted); font-size: 1.2rem; }
.btn { display: inline-block; background: var(--accent); color: #fff !important; border: 0; border-radius: 999px; padding: .75rem 1.5rem; font-weight: 600; text-decoration: none; cursor: pointer; }
.btn[disabled] { opacity: .6; cursor: progress; }
.btn-small { padding: .4rem 1rem; }
.waitlist { background: #fff; border-radius: 16px; padding: 2rem; margin: 2rem 0; box-shadow: 0 8px 30px rgba(0,0,0,.06); }
.field { display: flex; flex-direction: column; margin-bottom: 1rem; }
.field input { font: inherit; padding: .65rem .8rem; border: 1px solid #d9d2ca; border-radius: 8px; }
.field-error { color: var(--err); font-size: .9rem; }
.alert { border-radius: 8px; padding: .75rem 1rem; margin-bottom: 1rem; }
.alert-error { background: #fef3f2; color: var(--err); }
.alert-success { background: #ecfdf3; color: var(--ok); }
.prose { padding: 2rem 0; }
.footer { border-top: 1px solid #eee3d8; margin-top: 3rem; padding: 2rem 0; color: var(--muted); font-size: .9rem; }
`

// Disables the submit control while a submission is in flight.
const submitGuardScript = `
document.querySelectorAll("form[data-waitlist]").forEach(function (form) {
  form.addEventListener("submit", function () {
    var button = form.querySelector("button[type=submit]");
    if (button) { button.disabled = true; button.textContent = "Joining..."; }
  });
});
`
